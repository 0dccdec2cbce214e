package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var errUnavailable = errors.New("capability unavailable")

// fakeCompletion answers prompts through respond and counts calls per kind
type fakeCompletion struct {
	respond   func(prompt string) (string, error)
	calls     atomic.Int32
	education atomic.Int32
}

func (f *fakeCompletion) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls.Add(1)
	if strings.Contains(prompt, "agente educacional") {
		f.education.Add(1)
	}
	if f.respond == nil {
		return "", errUnavailable
	}
	return f.respond(prompt)
}

func failingCompletion() *fakeCompletion {
	return &fakeCompletion{}
}

// analysisResponse builds a labeled model answer with the given score
func analysisResponse(score string) string {
	return "ANÁLISE DETALHADA: A mensagem pede dados bancários.\n" +
		"PONTUAÇÃO DE RISCO: " + score + "\n" +
		"EXPLICAÇÃO PARA O USUÁRIO: Parece um golpe.\n" +
		"RECOMENDAÇÕES:\n- Não responda\n- Bloqueie o remetente\n"
}

func isKeywordPrompt(prompt string) bool {
	return strings.Contains(prompt, "palavras-chave")
}

// scriptedCompletion returns fixed answers for keyword, analysis and education prompts
func scriptedCompletion(score string) *fakeCompletion {
	return &fakeCompletion{respond: func(prompt string) (string, error) {
		switch {
		case isKeywordPrompt(prompt):
			return `["banco", "cartão"]`, nil
		case strings.Contains(prompt, "agente educacional"):
			return "TEXTO EDUCATIVO: Golpistas se passam pelo banco.\nDICAS DE SEGURANÇA:\n- Desligue\n- Ligue para o banco\n", nil
		default:
			return analysisResponse(score), nil
		}
	}}
}

// fakeSearch returns results chosen by query and counts calls
type fakeSearch struct {
	results func(query string) ([]SearchResult, error)
	calls   atomic.Int32

	mu      sync.Mutex
	queries []string
}

func (f *fakeSearch) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.results == nil {
		return nil, nil
	}
	return f.results(query)
}

func (f *fakeSearch) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

// blockingSearch never answers before the caller gives up
type blockingSearch struct{}

func (blockingSearch) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeReputation struct {
	counts  *ReputationCounts
	err     error
	enabled bool
	calls   atomic.Int32
}

func (f *fakeReputation) CheckURL(ctx context.Context, rawURL string) (*ReputationCounts, error) {
	f.calls.Add(1)
	return f.counts, f.err
}

func (f *fakeReputation) Enabled() bool { return f.enabled }

type fakeBlacklist map[string]string

func (b fakeBlacklist) Lookup(domain string) (string, bool) {
	category, ok := b[domain]
	return category, ok
}

type fakeAllowlist []string

func (a fakeAllowlist) IsTrusted(domain string) bool {
	for _, d := range a {
		if matchesDomain(domain, d) {
			return true
		}
	}
	return false
}

// mapCache is an in-test CacheRepository
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *mapCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *mapCache) Cleanup(ctx context.Context) error { return nil }

// fakeRecords collects saved records
type fakeRecords struct {
	err   error
	mu    sync.Mutex
	saved []*AnalysisRecord
}

func (f *fakeRecords) Save(ctx context.Context, record *AnalysisRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, record)
	return f.err
}

func (f *fakeRecords) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}
