// Package enrichmenttest provides in-memory annotation and enrichment services
// for exercising the pipeline without network access.
package enrichmenttest

import (
	"context"
	"errors"
	"sync"

	"yashubustudio/goenrich/enrichment"
)

// Lookup answers annotation queries from a per-scope table of known IDs.
type Lookup struct {
	Known map[enrichment.Scope]map[string]string

	mu     sync.Mutex
	scopes []enrichment.Scope
}

// Lookup implements enrichment.Lookup. Unknown queries produce an absent hit.
func (l *Lookup) Lookup(_ context.Context, ids []string, scope enrichment.Scope, _ enrichment.Organism) ([]enrichment.LookupHit, error) {
	l.mu.Lock()
	l.scopes = append(l.scopes, scope)
	l.mu.Unlock()
	table := l.Known[scope]
	hits := make([]enrichment.LookupHit, 0, len(ids))
	for _, id := range ids {
		cand := enrichment.NewAbsent()
		if ens, ok := table[id]; ok {
			cand = enrichment.NewRecord(map[string]enrichment.Candidate{
				enrichment.GeneField: enrichment.NewScalar(ens),
			})
		}
		hits = append(hits, enrichment.LookupHit{Query: id, Candidate: cand})
	}
	return hits, nil
}

// Scopes returns the scopes queried so far.
func (l *Lookup) Scopes() []enrichment.Scope {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]enrichment.Scope(nil), l.scopes...)
}

// Session is a scripted enrichment service.
type Session struct {
	Credential string
	Accepted   float64
	Report     []enrichment.RawRecord
	ReportErr  error

	mu        sync.Mutex
	submitted string
}

// Authenticate accepts only the configured credential.
func (s *Session) Authenticate(_ context.Context, credential string) (bool, error) {
	return credential == s.Credential, nil
}

// AddList records the submitted list.
func (s *Session) AddList(_ context.Context, ids, _, _ string, _ int) (float64, error) {
	s.mu.Lock()
	s.submitted = ids
	s.mu.Unlock()
	return s.Accepted, nil
}

func (s *Session) SetCategories(context.Context, []string) error { return nil }

func (s *Session) GetChartReport(context.Context, float64, int) ([]enrichment.RawRecord, error) {
	if s.ReportErr != nil {
		return nil, s.ReportErr
	}
	return s.Report, nil
}

// Submitted returns the comma-joined ID list passed to AddList.
func (s *Session) Submitted() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitted
}

// Sessions returns a factory that always hands out s.
func Sessions(s *Session) enrichment.SessionFactory {
	return func() (enrichment.EnrichmentService, error) {
		if s == nil {
			return nil, errors.New("no session configured")
		}
		return s, nil
	}
}

// HumanFixture is a lookup that knows BRCA1 and TP53 by symbol.
func HumanFixture() *Lookup {
	return &Lookup{Known: map[enrichment.Scope]map[string]string{
		enrichment.ScopeSymbol: {
			"BRCA1": "ENSG00000012048",
			"TP53":  "ENSG00000141510",
		},
	}}
}

// ChartFixture is a two-term chart report.
func ChartFixture() []enrichment.RawRecord {
	return []enrichment.RawRecord{
		{
			"categoryName": "GOTERM_BP_DIRECT", "termName": "GO:0006281~DNA repair",
			"listHits": 2, "percent": "100.0", "ease": 0.0012, "geneIds": "ENSG00000012048, ENSG00000141510",
			"listTotals": 2, "popHits": 400, "popTotals": 20000, "foldEnrichment": 50.0,
			"bonferroni": 0.01, "benjamini": 0.01, "afdr": 0.01,
		},
		{
			"categoryName": "KEGG_PATHWAY", "termName": "hsa05200:Pathways in cancer",
			"listHits": "2", "ease": nil,
		},
	}
}
