package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripdeck/tripdeck/internal/api"
	"github.com/tripdeck/tripdeck/internal/types"
)

type HandlerImpl struct {
	authService Service
	logger      *slog.Logger
}

func NewHandlerImpl(authService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

// Register creates a new user account.
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/register"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Register"))

	var req types.RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(ctx, req.Email, req.Password)
	if err != nil {
		l.ErrorContext(ctx, "registration failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "registration failed")
		api.ErrorResponse(w, r, http.StatusBadRequest, "registration failed")
		return
	}

	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	span.SetStatus(codes.Ok, "user registered")
	api.WriteJSONResponse(w, r, http.StatusCreated, user)
}

// Login verifies credentials and returns a signed access token.
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/login"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))

	var req types.LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			span.SetStatus(codes.Error, "invalid credentials")
			api.ErrorResponse(w, r, http.StatusUnauthorized, "invalid email or password")
			return
		}
		l.ErrorContext(ctx, "login failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "login failed")
		return
	}

	span.SetStatus(codes.Ok, "login successful")
	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{
		AccessToken: token,
		Message:     "login successful",
	})
}
