package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TripIdeas/internal/config"
)

func TestCompleteSendsMessages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string        `json:"model"`
			Messages []chatMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body.Model)
		assert.Equal(t, []chatMessage{{Role: "system", Content: "be brief"}, {Role: "user", Content: "Lisbon"}}, body.Messages)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  food, tram, city \n"}}]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewChatGPTClient(config.ChatGPTConfig{Endpoint: srv.URL, Model: "gpt-test", APIKey: "sk-test"})
	got, err := client.Complete(context.Background(), " be brief ", "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, "food, tram, city", got)
}

func TestCompleteErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	_, err := NewChatGPTClient(config.ChatGPTConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"}).Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = NewChatGPTClient(config.ChatGPTConfig{Endpoint: srv.URL + "/empty", Model: "m", APIKey: "k"}).Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "no choices")

	_, err = NewChatGPTClient(config.ChatGPTConfig{Endpoint: srv.URL, Model: "m"}).Complete(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "misconfigured")
}
