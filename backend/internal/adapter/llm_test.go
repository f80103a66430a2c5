package adapter

import (
	"context"
	"testing"
)

// TestLLMAdapter_Complete requires a running OpenAI-compatible gateway
// This is a basic integration test
func TestLLMAdapter_Complete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	llm := NewLLMAdapter("http://localhost:4000", "", "gpt-4o", "gpt-4o-mini")

	ctx := context.Background()
	content, err := llm.Complete(ctx, Request{
		System:   "You are a helpful assistant.",
		Messages: []Message{{Content: "Say hello in one sentence."}},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if content == "" {
		t.Error("Expected non-empty content in response")
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n[{\"name\":\"A\"}]\n```", `[{"name":"A"}]`},
		{"```\n[]\n```", "[]"},
		{`[{"name":"A"}]`, `[{"name":"A"}]`},
		{"  [1]  ", "[1]"},
	}
	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
