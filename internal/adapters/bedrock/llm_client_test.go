package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap/zaptest"
)

type fakeInvoker struct {
	response []byte
	err      error
	request  map[string]interface{}
	modelID  string
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.modelID = *params.ModelId
	if err := json.Unmarshal(params.Body, &f.request); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: f.response}, nil
}

func TestCompleteClaudeMessages(t *testing.T) {
	invoker := &fakeInvoker{response: []byte(`{"content":[{"type":"text","text":"PONTUAÇÃO DE RISCO: 8"}]}`)}
	c := NewBedrockClient(invoker, "anthropic.claude-3-haiku-20240307-v1:0", 512, 0.2, 0.9, zaptest.NewLogger(t))

	got, err := c.Complete(context.Background(), "analise")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "PONTUAÇÃO DE RISCO: 8" {
		t.Fatalf("text = %q", got)
	}
	if invoker.request["anthropic_version"] != anthropicVersion {
		t.Fatalf("messages request not used: %v", invoker.request)
	}
	if _, ok := invoker.request["messages"]; !ok {
		t.Fatalf("request has no messages: %v", invoker.request)
	}
}

func TestCompleteLegacyClaude(t *testing.T) {
	invoker := &fakeInvoker{response: []byte(`{"completion":" resposta"}`)}
	c := NewBedrockClient(invoker, "anthropic.claude-v2", 512, 0.2, 0.9, zaptest.NewLogger(t))

	got, err := c.Complete(context.Background(), "analise")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != " resposta" {
		t.Fatalf("text = %q", got)
	}
	if prompt, _ := invoker.request["prompt"].(string); prompt != "\n\nHuman: analise\n\nAssistant:" {
		t.Fatalf("prompt = %q", prompt)
	}
}

func TestCompleteTitan(t *testing.T) {
	invoker := &fakeInvoker{response: []byte(`{"results":[{"outputText":"ok"}]}`)}
	c := NewBedrockClient(invoker, "amazon.titan-text-express-v1", 512, 0.2, 0.9, zaptest.NewLogger(t))

	got, err := c.Complete(context.Background(), "analise")
	if err != nil || got != "ok" {
		t.Fatalf("Complete = %q, %v", got, err)
	}

	invoker.response = []byte(`{"results":[]}`)
	if _, err := c.Complete(context.Background(), "analise"); err == nil {
		t.Fatal("expected an error for an empty Titan response")
	}
}

func TestCompleteInvokeError(t *testing.T) {
	invoker := &fakeInvoker{err: errors.New("throttled")}
	c := NewBedrockClient(invoker, "meta.llama3-8b-instruct-v1:0", 512, 0.2, 0.9, zaptest.NewLogger(t))

	if _, err := c.Complete(context.Background(), "analise"); err == nil {
		t.Fatal("expected the invoke error to be returned")
	}
}
