package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestCompleteSuccess(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/chat/completions",
		APIKey:  "sk-test",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if got := req.Header.Get("Authorization"); got != "Bearer sk-test" {
					t.Fatalf("unexpected auth header %q", got)
				}
				var body chatRequest
				if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
					t.Fatalf("decode request: %v", err)
				}
				if body.MaxTokens != 300 {
					t.Fatalf("expected max_tokens 300, got %d", body.MaxTokens)
				}
				if len(body.Messages) != 1 || body.Messages[0].Role != "user" {
					t.Fatalf("expected a single user message, got %+v", body.Messages)
				}
				return respond(200, `{"choices":[{"message":{"role":"assistant","content":"  Answer \n"}}]}`)
			}),
		},
	}

	out, err := client.Complete(context.Background(), "Summarise the day", 300)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "Answer" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestCompleteAPIError(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/chat/completions",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return respond(400, `{"error":{"message":"bad"}}`)
			}),
		},
	}
	if _, err := client.Complete(context.Background(), "q", 10); err == nil || !strings.Contains(err.Error(), "bad") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestCompleteHTTPStatus(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/chat/completions",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return respond(502, `<html>bad gateway</html>`)
			}),
		},
	}
	if _, err := client.Complete(context.Background(), "q", 10); err == nil {
		t.Fatal("expected error")
	}
}

func TestChatWithSystem(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1/chat/completions",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				var body chatRequest
				_ = json.NewDecoder(req.Body).Decode(&body)
				if len(body.Messages) != 2 || body.Messages[0].Role != "system" {
					t.Fatalf("expected system then user, got %+v", body.Messages)
				}
				return respond(200, `{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`)
			}),
		},
	}
	out, err := client.Chat(context.Background(), "system", "user prompt", 0)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "hi" {
		t.Fatalf("unexpected chat output %s", out)
	}
}

func TestMissingConfig(t *testing.T) {
	if _, err := (&Client{}).Complete(context.Background(), "q", 1); err == nil {
		t.Fatal("expected error without base URL and model")
	}
}

func TestEmptyChoices(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test",
		Model:   "m",
		HTTPClient: &http.Client{Transport: roundTrip(func(*http.Request) *http.Response {
			return respond(200, `{"choices":[]}`)
		})},
	}
	if _, err := client.Complete(context.Background(), "q", 1); err == nil {
		t.Fatal("expected empty response error")
	}
}
