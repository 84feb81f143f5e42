package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"{\"totalScore\":55}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "", srv.URL+"/", srv.Client())
	out, err := c.GenerateJSON(context.Background(), Request{
		System:     "be strict",
		Prompt:     "assess this",
		SchemaName: "feedback",
		Schema:     FeedbackSchema(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"totalScore":55}`, string(out))

	assert.Equal(t, "gpt-4o-mini", got["model"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])

	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok, "response_format missing: %v", got)
	assert.Equal(t, "json_schema", format["type"])
	js := format["json_schema"].(map[string]any)
	assert.Equal(t, "feedback", js["name"])
	assert.Equal(t, true, js["strict"])
	schema := js["schema"].(map[string]any)
	assert.Equal(t, false, schema["additionalProperties"])
	total := schema["properties"].(map[string]any)["totalScore"].(map[string]any)
	assert.Equal(t, float64(0), total["minimum"])
	assert.Equal(t, float64(100), total["maximum"])
}

func TestOpenAIClient_APIErrorKeepsStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "m", srv.URL, srv.Client())
	_, err := c.GenerateJSON(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)

	var apiErr *openai.Error
	require.True(t, errors.As(err, &apiErr), err.Error())
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 1, calls)
}

func TestOpenAIClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`, "openai: creating chat completion"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "no choices"},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":""},"finish_reason":"length"}]}`, "length"},
		{"refusal", http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"","refusal":"cannot help"},"finish_reason":"stop"}]}`, "refused: cannot help"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewOpenAIClient("k", "m", srv.URL, srv.Client())
			_, err := c.GenerateJSON(context.Background(), Request{Prompt: "p"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
