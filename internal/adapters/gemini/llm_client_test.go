package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap/zaptest"
)

type fakeGenerator struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return f.resp, f.err
}

func candidate(parts ...genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
	}
}

func TestCompleteJoinsTextParts(t *testing.T) {
	c := &GeminiClient{
		model:     &fakeGenerator{resp: candidate(genai.Text("PONTUAÇÃO "), genai.Text("DE RISCO: 7"))},
		modelName: "gemini-2.0-flash",
		logger:    zaptest.NewLogger(t),
	}

	got, err := c.Complete(context.Background(), "analise")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "PONTUAÇÃO DE RISCO: 7" {
		t.Fatalf("text = %q", got)
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := map[string]*fakeGenerator{
		"api error":     {err: errors.New("quota exceeded")},
		"no candidates": {resp: &genai.GenerateContentResponse{}},
		"no text parts": {resp: candidate(genai.Blob{MIMEType: "image/png"})},
	}
	for name, gen := range tests {
		t.Run(name, func(t *testing.T) {
			c := &GeminiClient{model: gen, logger: zaptest.NewLogger(t)}
			if _, err := c.Complete(context.Background(), "analise"); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient("", "gemini-2.0-flash", 1024, 0.2, 0.9, zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected an error without an api key")
	}
}
