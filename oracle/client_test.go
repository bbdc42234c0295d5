package oracle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/siftlab/companysift/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.OracleConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func answerWith(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"text": text}},
			},
		})
	}
}

func TestAskAffirmative(t *testing.T) {
	client := newTestClient(t, answerWith("true"))
	assert.True(t, client.Ask(context.Background(), "Is it tech?", "industry: Technology"))
}

func TestAskTrimsAndLowercases(t *testing.T) {
	client := newTestClient(t, answerWith("  TRUE  "))
	assert.True(t, client.Ask(context.Background(), "Is it tech?", "industry: Technology"))
}

func TestAskAmbiguousAnswerIsFalse(t *testing.T) {
	for _, answer := range []string{"maybe", "false", "yes", "True."} {
		t.Run(answer, func(t *testing.T) {
			client := newTestClient(t, answerWith(answer))
			assert.False(t, client.Ask(context.Background(), "Is it tech?", "industry: Finance"))
		})
	}
}

func TestAskEmptyChoicesIsFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})
	assert.False(t, client.Ask(context.Background(), "q", "c"))
}

func TestAskContentFieldFallback(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "true"}}]}`))
	})
	assert.True(t, client.Ask(context.Background(), "q", "c"))
}

func TestAskMalformedResponseIsFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})
	assert.False(t, client.Ask(context.Background(), "q", "c"))
}

func TestAskServerErrorIsFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	assert.False(t, client.Ask(context.Background(), "q", "c"))
}

func TestAskUnauthorizedIsFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "bad key"}`))
	})
	assert.False(t, client.Ask(context.Background(), "q", "c"))
}

func TestAskTransportErrorIsFalse(t *testing.T) {
	client := NewClient(config.OracleConfig{
		APIKey:  "test-key",
		BaseURL: "http://127.0.0.1:1", // nothing listening
		Model:   "test-model",
		Timeout: time.Second,
	}, zap.NewNop())

	assert.False(t, client.Ask(context.Background(), "q", "c"))
}

func TestAskRequestShape(t *testing.T) {
	var captured struct {
		auth string
		body chatRequest
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured.body))
		answerWith("true")(w, r)
	})

	ok := client.Ask(context.Background(), "Is this a software vendor?", "description: We sell APIs.")
	require.True(t, ok)

	assert.Equal(t, "Bearer test-key", captured.auth)
	assert.Equal(t, "test-model", captured.body.Model)
	require.Len(t, captured.body.Messages, 1)
	assert.Equal(t, "user", captured.body.Messages[0].Role)
	require.Len(t, captured.body.Messages[0].Content, 1)

	prompt := captured.body.Messages[0].Content[0].Text
	assert.Contains(t, prompt, "description: We sell APIs.")
	assert.Contains(t, prompt, "Question: Is this a software vendor?")
	assert.Contains(t, prompt, `Answer with "true" or "false" only.`)
}

func TestAskRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		answerWith("true")(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(config.OracleConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		Model:      "test-model",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}, zap.NewNop())

	assert.True(t, client.Ask(context.Background(), "q", "c"))
	assert.Equal(t, 2, attempts)
}
