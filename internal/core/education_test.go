package core

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestEducation(completion TextCompletionClient, search WebSearchClient, cache CacheRepository) *EducationSynthesizer {
	return NewEducationSynthesizer(completion, search, cache, DefaultEducationConfig(), zap.NewNop())
}

func TestSynthesizeParsesBundle(t *testing.T) {
	e := newTestEducation(scriptedCompletion("0"), nil, newMapCache())

	got := e.Synthesize(context.Background(), CategoryBanking)
	if got.EducationalText != "Golpistas se passam pelo banco." {
		t.Fatalf("text = %q", got.EducationalText)
	}
	if want := []string{"Desligue", "Ligue para o banco"}; !reflect.DeepEqual(got.Tips, want) {
		t.Fatalf("tips = %v", got.Tips)
	}
}

func TestSynthesizeIsMemoizedPerLabel(t *testing.T) {
	completion := scriptedCompletion("0")
	search := &fakeSearch{}
	e := newTestEducation(completion, search, newMapCache())

	for i := 0; i < 3; i++ {
		e.Synthesize(context.Background(), CategoryPix)
	}
	if n := completion.education.Load(); n != 1 {
		t.Fatalf("education prompts for one label = %d, want 1", n)
	}
	if n := search.calls.Load(); n != 1 {
		t.Fatalf("searches for one label = %d, want 1", n)
	}

	e.Synthesize(context.Background(), CategoryPrize)
	if n := completion.education.Load(); n != 2 {
		t.Fatalf("education prompts for two labels = %d, want 2", n)
	}
}

func TestSynthesizeConcurrentMissesGenerateOnce(t *testing.T) {
	base := scriptedCompletion("0")
	completion := &fakeCompletion{respond: func(prompt string) (string, error) {
		time.Sleep(20 * time.Millisecond)
		return base.respond(prompt)
	}}
	e := newTestEducation(completion, nil, newMapCache())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Synthesize(context.Background(), CategoryImpersonation)
		}()
	}
	wg.Wait()

	if n := completion.education.Load(); n != 1 {
		t.Fatalf("education prompts = %d, want 1", n)
	}
}

func TestSynthesizeTemplateOnFailure(t *testing.T) {
	completion := failingCompletion()
	e := newTestEducation(completion, nil, newMapCache())

	got := e.Synthesize(context.Background(), CategoryPix)
	if !strings.HasPrefix(got.EducationalText, "Cuidado com golpes financeiros com pix!") {
		t.Fatalf("text = %q", got.EducationalText)
	}
	if len(got.Tips) != 5 {
		t.Fatalf("tips = %v", got.Tips)
	}

	// The template bundle is cached like any other
	for i := 0; i < 2; i++ {
		again := e.Synthesize(context.Background(), CategoryPix)
		if again.EducationalText != got.EducationalText {
			t.Fatalf("cached text = %q", again.EducationalText)
		}
	}
	if n := completion.education.Load(); n != 1 {
		t.Fatalf("education prompts = %d, want 1", n)
	}
}

func TestSynthesizeOutlivesCancelledCaller(t *testing.T) {
	e := newTestEducation(scriptedCompletion("0"), nil, newMapCache())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := e.Synthesize(ctx, CategoryBanking)
	if got.EducationalText != "Golpistas se passam pelo banco." {
		t.Fatalf("text = %q", got.EducationalText)
	}
}

func TestSynthesizeEnrichment(t *testing.T) {
	hits := &fakeSearch{results: func(string) ([]SearchResult, error) {
		return []SearchResult{{Title: "Novo golpe", Snippet: "Criminosos usam falsas centrais."}}, nil
	}}

	enrichWith := func(answer string) *fakeCompletion {
		base := scriptedCompletion("0")
		return &fakeCompletion{respond: func(prompt string) (string, error) {
			if strings.HasPrefix(prompt, "Analise o seguinte texto educativo") {
				return answer, nil
			}
			return base.respond(prompt)
		}}
	}

	enriched := "TEXTO EDUCATIVO: Texto atualizado com as falsas centrais telefônicas.\nDICAS DE SEGURANÇA:\n- Desconfie\n"
	got := newTestEducation(enrichWith(enriched), hits, nil).Synthesize(context.Background(), CategoryBanking)
	if got.EducationalText != "Texto atualizado com as falsas centrais telefônicas." {
		t.Fatalf("enriched text not used: %q", got.EducationalText)
	}

	got = newTestEducation(enrichWith("ok"), hits, nil).Synthesize(context.Background(), CategoryBanking)
	if got.EducationalText != "Golpistas se passam pelo banco." {
		t.Fatalf("short enrichment should keep the base text, got %q", got.EducationalText)
	}
}

func TestSynthesizeReturnsCopies(t *testing.T) {
	e := newTestEducation(scriptedCompletion("0"), nil, newMapCache())

	first := e.Synthesize(context.Background(), CategoryGeneric)
	first.Tips[0] = "changed"

	if second := e.Synthesize(context.Background(), CategoryGeneric); second.Tips[0] == "changed" {
		t.Fatal("cached bundle was mutated through a returned copy")
	}
}
