package enrichment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	mu        sync.Mutex
	responses map[Scope][]LookupHit
	errs      map[Scope]error
	delays    map[Scope]time.Duration
	calls     []Scope
	queried   [][]string
}

func (f *fakeLookup) Lookup(ctx context.Context, ids []string, scope Scope, organism Organism) ([]LookupHit, error) {
	f.mu.Lock()
	f.calls = append(f.calls, scope)
	f.queried = append(f.queried, append([]string(nil), ids...))
	delay := f.delays[scope]
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if err := f.errs[scope]; err != nil {
		return nil, err
	}
	if hits, ok := f.responses[scope]; ok {
		return hits, nil
	}
	out := make([]LookupHit, len(ids))
	for i, id := range ids {
		out[i] = LookupHit{Query: id}
	}
	return out, nil
}

func TestResolvePrefersFirstMatchingScope(t *testing.T) {
	lookup := &fakeLookup{responses: map[Scope][]LookupHit{
		ScopeSymbol:  {{Query: "BRCA1", Candidate: gene("ENSG00000012048")}},
		ScopeEntrez:  {{Query: "BRCA1", Candidate: gene("ENSG_OTHER")}},
		ScopeEnsembl: {{Query: "BRCA1", Candidate: gene("ENSG_OTHER")}},
	}}
	res := NewResolver(lookup, false, nil).Resolve(context.Background(), []string{"BRCA1"}, "human")

	require.True(t, res.Matched)
	assert.Equal(t, ScopeSymbol, res.Scope)
	assert.Equal(t, []CanonicalID{"ENSG00000012048"}, res.IDs)
	assert.Equal(t, []Scope{ScopeSymbol}, lookup.calls)
}

func TestResolveFallsThroughFailuresAndMisses(t *testing.T) {
	lookup := &fakeLookup{
		errs: map[Scope]error{ScopeSymbol: errors.New("boom")},
		responses: map[Scope][]LookupHit{
			ScopeEnsembl: {{Query: "ENSG00000141510", Candidate: NewScalar("ENSG00000141510")}},
		},
	}
	res := NewResolver(lookup, false, nil).Resolve(context.Background(), []string{"ENSG00000141510"}, "human")

	require.True(t, res.Matched)
	assert.Equal(t, ScopeEnsembl, res.Scope)
	assert.Equal(t, []Scope{ScopeSymbol, ScopeEntrez, ScopeEnsembl}, lookup.calls)
}

func TestResolveNoMatch(t *testing.T) {
	lookup := &fakeLookup{errs: map[Scope]error{ScopeEntrez: errors.New("malformed")}}
	res := NewResolver(lookup, false, nil).Resolve(context.Background(), []string{"bogus1", "bogus2"}, "mouse")

	assert.False(t, res.Matched)
	assert.Empty(t, res.IDs)
	assert.NotNil(t, res.IDs)
	assert.Len(t, lookup.calls, 3)
}

func TestResolveEmptyInputMakesNoCalls(t *testing.T) {
	lookup := &fakeLookup{}
	res := NewResolver(lookup, false, nil).Resolve(context.Background(), []string{"", "  "}, "human")
	assert.False(t, res.Matched)
	assert.Empty(t, lookup.calls)
}

func TestResolveDeduplicatesAndKeepsServiceOrder(t *testing.T) {
	lookup := &fakeLookup{responses: map[Scope][]LookupHit{
		ScopeSymbol: {
			{Query: "TP53", Candidate: NewSequence(gene("ENSG00000141510"), gene("ENSG_DUP"))},
			{Query: "bogus123"},
			{Query: "BRCA1", Candidate: gene("ENSG00000012048")},
			{Query: "EMPTY", Candidate: NewSequence()},
		},
	}}
	res := NewResolver(lookup, false, nil).Resolve(context.Background(),
		[]string{"BRCA1", " TP53", "BRCA1", "bogus123", "ＴＰ５３", "EMPTY"}, "human")

	require.True(t, res.Matched)
	assert.Equal(t, []string{"BRCA1", "TP53", "bogus123", "EMPTY"}, lookup.queried[0])
	assert.Equal(t, []CanonicalID{"ENSG00000141510", "ENSG00000012048"}, res.IDs)
	assert.Equal(t, []string{"bogus123", "EMPTY"}, res.Unresolved)
}

func TestResolveParallelIsDeterministic(t *testing.T) {
	lookup := &fakeLookup{
		responses: map[Scope][]LookupHit{
			ScopeSymbol:  {{Query: "X", Candidate: gene("FROM_SYMBOL")}},
			ScopeEnsembl: {{Query: "X", Candidate: gene("FROM_ENSEMBL")}},
		},
		delays: map[Scope]time.Duration{ScopeSymbol: 20 * time.Millisecond},
	}
	res := NewResolver(lookup, true, nil).Resolve(context.Background(), []string{"X"}, "human")

	require.True(t, res.Matched)
	assert.Equal(t, ScopeSymbol, res.Scope)
	assert.Equal(t, []CanonicalID{"FROM_SYMBOL"}, res.IDs)
	assert.Len(t, lookup.calls, 3)
}
