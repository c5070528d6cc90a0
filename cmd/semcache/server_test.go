package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/semcache"
	"github.com/poiesic/semcache/ai/mock"
	"github.com/poiesic/semcache/core"
)

func newTestServer(t *testing.T) (*server, context.CancelFunc) {
	t.Helper()

	system, err := semcache.New("",
		semcache.WithInMemory(),
		semcache.WithAIProvider(mock.NewMockProvider()),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	system.Start(ctx)
	t.Cleanup(func() {
		cancel()
		_ = system.Close()
	})

	return newServer(system, slog.Default()), cancel
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func getPath(handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.routes()

	w := getPath(handler, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestIngestEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.routes()

	t.Run("accepts a valid document", func(t *testing.T) {
		w := postJSON(t, handler, "/ingest", ingestRequest{
			DocumentID: "doc-1",
			FileName:   "notes.txt",
			Content:    "Some document content. It has two sentences.",
		})

		require.Equal(t, http.StatusAccepted, w.Code)

		// The 202 body carries the job snapshot, not just an id
		var accepted core.IngestJob
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
		require.NotEmpty(t, accepted.ID)
		assert.Equal(t, "doc-1", accepted.DocumentID)
		assert.Equal(t, "/ingest/"+accepted.ID, w.Header().Get("Location"))

		// Job becomes visible and eventually finishes
		require.Eventually(t, func() bool {
			w := getPath(handler, "/ingest/"+accepted.ID)
			if w.Code != http.StatusOK {
				return false
			}
			var job core.IngestJob
			if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
				return false
			}
			return job.Status == core.JobStatusDone
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		w := postJSON(t, handler, "/ingest", ingestRequest{FileName: "x.txt", Content: "text"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestJobStatusEndpoint_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.routes()

	w := getPath(handler, "/ingest/no-such-job")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.routes()

	t.Run("answers with cache status header", func(t *testing.T) {
		w := postJSON(t, handler, "/chat", chatRequest{Prompt: "what is in my documents?"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "MISS", w.Header().Get("X-Cache-Status"))

		var resp struct {
			Answer      string `json:"answer"`
			CacheStatus string `json:"cacheStatus"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Answer)
		assert.Equal(t, "MISS", resp.CacheStatus)
	})

	t.Run("repeated prompt becomes a hit", func(t *testing.T) {
		prompt := chatRequest{Prompt: "a question asked twice"}
		first := postJSON(t, handler, "/chat", prompt)
		require.Equal(t, http.StatusOK, first.Code)

		require.Eventually(t, func() bool {
			w := postJSON(t, handler, "/chat", prompt)
			return w.Code == http.StatusOK && w.Header().Get("X-Cache-Status") == "HIT"
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("rejects empty prompt", func(t *testing.T) {
		w := postJSON(t, handler, "/chat", chatRequest{Prompt: "  "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReingestEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.routes()

	w := postJSON(t, handler, "/ingest/doc-9/reingest", ingestRequest{
		FileName: "doc9.txt",
		Content:  "Replacement content for the ninth document.",
	})

	require.Equal(t, http.StatusAccepted, w.Code)

	var accepted core.IngestJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.ID)
	assert.Equal(t, "doc-9", accepted.DocumentID)

	require.Eventually(t, func() bool {
		w := getPath(handler, "/ingest/"+accepted.ID)
		var job core.IngestJob
		return w.Code == http.StatusOK &&
			json.Unmarshal(w.Body.Bytes(), &job) == nil &&
			job.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
}

