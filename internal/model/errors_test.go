package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestIsOverloaded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"api error 429", &openai.APIError{HTTPStatusCode: 429}, true},
		{"api error 500", &openai.APIError{HTTPStatusCode: 500}, true},
		{"api error 503", &openai.APIError{HTTPStatusCode: 503}, true},
		{"api error 400", &openai.APIError{HTTPStatusCode: 400}, false},
		{"api error 401", &openai.APIError{HTTPStatusCode: 401}, false},
		{"wrapped api error", fmt.Errorf("call failed: %w", &openai.APIError{HTTPStatusCode: 429}), true},
		{"rate limit text", errors.New("Rate limit exceeded, retry later"), true},
		{"too many requests text", errors.New("too many requests"), true},
		{"overloaded text", errors.New("server is Overloaded"), true},
		{"status code text", errors.New("unexpected status 503"), true},
		{"auth failure", errors.New("invalid api key"), false},
		{"plain failure", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverloaded(tt.err); got != tt.want {
				t.Errorf("IsOverloaded(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGenerationErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := WrapGenerationError("model call failed", inner, false)

	if !errors.Is(err, inner) {
		t.Error("wrapped error not reachable via errors.Is")
	}

	var gerr *GenerationError
	if !errors.As(error(err), &gerr) {
		t.Fatal("errors.As failed")
	}
	if gerr.Message != "model call failed" {
		t.Errorf("message = %q", gerr.Message)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("slide_count", "must be one of 3, 5, 7, 10")
	if err.Error() != "invalid slide_count: must be one of 3, 5, 7, 10" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestPublicMessage(t *testing.T) {
	upstream := errors.New("Incorrect API key provided: sk-secret-123")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", NewValidationError("slide_count", "must be one of 3, 5, 7, 10"), "invalid slide_count: must be one of 3, 5, 7, 10"},
		{"generation", WrapGenerationError("AI model request failed", upstream, false), "failed to process AI response"},
		{"overloaded", WrapGenerationError("AI model overloaded", upstream, true), "AI service unavailable"},
		{"render", &RenderError{Err: errors.New("zip writer broke")}, "failed to render presentation"},
		{"unknown", errors.New("disk full"), "internal server error"},
		{"wrapped", fmt.Errorf("pipeline: %w", NewGenerationError("no JSON object found")), "failed to process AI response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PublicMessage(tt.err)
			if got != tt.want {
				t.Errorf("PublicMessage() = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "sk-secret") {
				t.Errorf("PublicMessage() leaked upstream detail: %q", got)
			}
		})
	}
}
