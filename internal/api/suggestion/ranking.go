package suggestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"google.golang.org/genai"

	generativeAI "github.com/tripdeck/tripdeck/internal/api/generative_ai"
	"github.com/tripdeck/tripdeck/internal/types"
)

const (
	minSelections = 5
	maxSelections = 20
)

// Ranker delegates final selection of candidates, and the travel-tips flow,
// to an external reasoning service.
type Ranker interface {
	RankCandidates(ctx context.Context, req types.SuggestionRequest, candidates []types.SuggestionCandidate) ([]types.RankedPlace, error)
	TravelTips(ctx context.Context, markers []types.ExistingMarker) (*types.TravelTips, error)
	DestinationIdeas(ctx context.Context, req types.DestinationRequest) ([]types.DestinationIdea, error)
}

var _ Ranker = (*GeminiRanker)(nil)

// GeminiRanker ranks candidates with Gemini at temperature zero so repeated
// calls over the same candidate set stay reproducible.
type GeminiRanker struct {
	ai     *generativeAI.AIClient
	logger *slog.Logger
}

func NewGeminiRanker(ai *generativeAI.AIClient, logger *slog.Logger) *GeminiRanker {
	return &GeminiRanker{ai: ai, logger: logger}
}

func zeroTemperature() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0)}
}

// RankCandidates serializes the request context and the candidate list into a
// single completion call and parses the selected places out of the answer.
func (g *GeminiRanker) RankCandidates(ctx context.Context, req types.SuggestionRequest, candidates []types.SuggestionCandidate) ([]types.RankedPlace, error) {
	userRequest, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize user request: %w", err)
	}
	elements, err := json.Marshal(candidates)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize candidates: %w", err)
	}

	txt, err := g.ai.GenerateContent(ctx, selectionPrompt(string(userRequest), string(elements)), zeroTemperature())
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini ranking call failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", types.ErrRankingUnreachable, err)
	}

	return parseRankedPlaces(txt)
}

// TravelTips follows the same fetch/strip/parse pattern with a different
// output shape.
func (g *GeminiRanker) TravelTips(ctx context.Context, markers []types.ExistingMarker) (*types.TravelTips, error) {
	serialized, err := json.Marshal(markers)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize markers: %w", err)
	}

	txt, err := g.ai.GenerateContent(ctx, tipsPrompt(string(serialized)), zeroTemperature())
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini tips call failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", types.ErrRankingUnreachable, err)
	}

	return parseTravelTips(txt)
}

// DestinationIdeas renders the questionnaire answers into the destination
// prompt and parses five recommended destinations out of the answer.
func (g *GeminiRanker) DestinationIdeas(ctx context.Context, req types.DestinationRequest) ([]types.DestinationIdea, error) {
	txt, err := g.ai.GenerateContent(ctx, destinationPrompt(req), zeroTemperature())
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini destination call failed", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", types.ErrRankingUnreachable, err)
	}

	return parseDestinationIdeas(txt)
}

// fencePattern matches a leading code fence with an optional language tag and
// a trailing fence, the way models often wrap structured output.
var fencePattern = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\s*|\\s*```\\s*$")

// stripCodeFence removes optional markdown fencing around the model's answer.
// Unfenced text passes through unchanged apart from whitespace trimming.
func stripCodeFence(response string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(response, ""))
}

// parseRankedPlaces parses the stripped answer as a JSON list of selected
// places. The raw text is preserved in the error when parsing fails so the
// upstream garbage can be diagnosed. The selection cap is enforced here even
// if the model ignored its instructions.
func parseRankedPlaces(raw string) ([]types.RankedPlace, error) {
	cleaned := stripCodeFence(raw)

	var places []types.RankedPlace
	if err := json.Unmarshal([]byte(cleaned), &places); err != nil {
		return nil, &types.UnparsableResponseError{Raw: raw, Err: err}
	}
	if len(places) > maxSelections {
		places = places[:maxSelections]
	}
	return places, nil
}

// parseDestinationIdeas parses the stripped answer as the wrapped
// destinations object and unwraps the list.
func parseDestinationIdeas(raw string) ([]types.DestinationIdea, error) {
	cleaned := stripCodeFence(raw)

	var wrapper struct {
		Destinations []types.DestinationIdea `json:"destinations"`
	}
	if err := json.Unmarshal([]byte(cleaned), &wrapper); err != nil {
		return nil, &types.UnparsableResponseError{Raw: raw, Err: err}
	}
	return wrapper.Destinations, nil
}

// parseTravelTips parses the stripped answer as the tips object.
func parseTravelTips(raw string) (*types.TravelTips, error) {
	cleaned := stripCodeFence(raw)

	var tips types.TravelTips
	if err := json.Unmarshal([]byte(cleaned), &tips); err != nil {
		return nil, &types.UnparsableResponseError{Raw: raw, Err: err}
	}
	return &tips, nil
}
