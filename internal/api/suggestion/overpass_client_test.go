package suggestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdeck/tripdeck/internal/types"
)

func TestOverpassClient_Fetch(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("data")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"elements": [
			{"type": "node", "id": 1, "lat": 52.41, "lon": 12.55, "tags": {"name": "Spot"}},
			{"type": "way", "id": 2, "center": {"lat": 52.42, "lon": 12.56}}
		]}`))
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "tripdeck-test/1.0", 5*time.Second, discardLogger())
	resp, err := client.Fetch(context.Background(), "[out:json];node[name];out center;")
	require.NoError(t, err)

	assert.Equal(t, "[out:json];node[name];out center;", gotQuery)
	assert.Equal(t, "tripdeck-test/1.0", gotUA)
	require.Len(t, resp.Elements, 2)
	assert.Equal(t, "node", resp.Elements[0].Type)
	require.NotNil(t, resp.Elements[0].Lat)
	assert.Equal(t, 52.41, *resp.Elements[0].Lat)
	require.NotNil(t, resp.Elements[1].Center)
	assert.Equal(t, 52.42, resp.Elements[1].Center.Lat)
}

func TestOverpassClient_EmptyElementsIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements": []}`))
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "tripdeck-test/1.0", 5*time.Second, discardLogger())
	resp, err := client.Fetch(context.Background(), "query")
	require.NoError(t, err)
	assert.Empty(t, resp.Elements)
}

func TestOverpassClient_MissingElementsSurfacesRemark(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"remark": "runtime error: query timed out in \"query\""}`))
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "tripdeck-test/1.0", 5*time.Second, discardLogger())
	_, err := client.Fetch(context.Background(), "query")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMalformedResponse)
	assert.Contains(t, err.Error(), "runtime error")
}

func TestOverpassClient_MissingElementsNoRemark(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "tripdeck-test/1.0", 5*time.Second, discardLogger())
	_, err := client.Fetch(context.Background(), "query")
	assert.ErrorIs(t, err, types.ErrMalformedResponse)
}

func TestOverpassClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "tripdeck-test/1.0", 5*time.Second, discardLogger())
	_, err := client.Fetch(context.Background(), "query")
	assert.ErrorIs(t, err, types.ErrMalformedResponse)
}

func TestOverpassClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "tripdeck-test/1.0", 5*time.Second, discardLogger())
	_, err := client.Fetch(context.Background(), "query")
	assert.ErrorIs(t, err, types.ErrSourceUnreachable)
}

func TestOverpassClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewOverpassClient(srv.URL, "tripdeck-test/1.0", 20*time.Millisecond, discardLogger())
	_, err := client.Fetch(context.Background(), "query")
	assert.ErrorIs(t, err, types.ErrSourceTimeout)
}

func TestOverpassClient_Unreachable(t *testing.T) {
	// Server closed before the request, so the connection is refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewOverpassClient(srv.URL, "tripdeck-test/1.0", 5*time.Second, discardLogger())
	_, err := client.Fetch(context.Background(), "query")
	assert.ErrorIs(t, err, types.ErrSourceUnreachable)
}

func TestOverpassClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewOverpassClient(srv.URL, "tripdeck-test/1.0", 5*time.Second, discardLogger())
	_, err := client.Fetch(ctx, "query")
	assert.ErrorIs(t, err, types.ErrSourceTimeout)
}
