package enrichment

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// LookupHit is one entry of an annotation lookup response, in service order.
type LookupHit struct {
	Query     string
	Candidate Candidate
}

// Lookup queries the annotation service for one scope.
type Lookup interface {
	Lookup(ctx context.Context, ids []string, scope Scope, organism Organism) ([]LookupHit, error)
}

// Resolver detects the identifier namespace of a list and maps it to canonical IDs.
type Resolver struct {
	lookup   Lookup
	parallel bool
	logger   *zap.Logger
}

// NewResolver returns a resolver that tries scopes one at a time unless
// parallel is set.
func NewResolver(lookup Lookup, parallel bool, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{lookup: lookup, parallel: parallel, logger: logger}
}

// Resolve tries ScopePriority in order and keeps the first scope with at least
// one present candidate. Lookup failures only disqualify their scope. When no
// scope matches the returned Resolution has Matched == false.
func (r *Resolver) Resolve(ctx context.Context, identifiers []string, organism Organism) Resolution {
	ids := UniqueIdentifiers(identifiers)
	if len(ids) == 0 {
		return Resolution{IDs: []CanonicalID{}}
	}
	if r.parallel {
		return r.resolveParallel(ctx, ids, organism)
	}
	for _, scope := range ScopePriority {
		hits, err := r.lookup.Lookup(ctx, ids, scope, organism)
		if err != nil {
			r.logger.Warn("scope lookup failed", zap.String("scope", string(scope)), zap.Error(err))
			continue
		}
		if res, ok := collect(scope, ids, hits); ok {
			r.logMatch(res)
			return res
		}
	}
	return Resolution{IDs: []CanonicalID{}}
}

func (r *Resolver) resolveParallel(ctx context.Context, ids []string, organism Organism) Resolution {
	results := make([]Resolution, len(ScopePriority))
	matched := make([]bool, len(ScopePriority))
	var g errgroup.Group
	for i, scope := range ScopePriority {
		i, scope := i, scope
		g.Go(func() error {
			hits, err := r.lookup.Lookup(ctx, ids, scope, organism)
			if err != nil {
				r.logger.Warn("scope lookup failed", zap.String("scope", string(scope)), zap.Error(err))
				return nil
			}
			results[i], matched[i] = collect(scope, ids, hits)
			return nil
		})
	}
	_ = g.Wait()
	for i := range ScopePriority {
		if matched[i] {
			r.logMatch(results[i])
			return results[i]
		}
	}
	return Resolution{IDs: []CanonicalID{}}
}

func (r *Resolver) logMatch(res Resolution) {
	r.logger.Info("input matched scope",
		zap.String("scope", string(res.Scope)),
		zap.Int("ensemblHits", len(res.IDs)),
		zap.Int("unresolved", len(res.Unresolved)))
}

// collect flattens the hits of one scope. The scope matches when any hit
// carries a present candidate. Unresolved keeps the input order of ids.
func collect(scope Scope, ids []string, hits []LookupHit) (Resolution, bool) {
	res := Resolution{Scope: scope, IDs: []CanonicalID{}}
	resolved := make(map[string]bool, len(hits))
	for _, hit := range hits {
		if !hit.Candidate.Present() {
			continue
		}
		res.Matched = true
		id := Flatten(hit.Candidate)
		if id == "" {
			continue
		}
		res.IDs = append(res.IDs, CanonicalID(id))
		resolved[hit.Query] = true
	}
	if !res.Matched {
		return Resolution{}, false
	}
	for _, id := range ids {
		if !resolved[id] {
			res.Unresolved = append(res.Unresolved, id)
		}
	}
	return res, true
}
