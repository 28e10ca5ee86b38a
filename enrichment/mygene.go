package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultMyGeneURL is the public MyGene.info v3 API.
const DefaultMyGeneURL = "https://mygene.info/v3"

const (
	// ensemblField is requested from the annotation service; its top-level key
	// holds the candidate for each hit.
	ensemblField = "ensembl.gene"
	ensemblKey   = "ensembl"
	// myGeneBatchSize is the service's per-request query limit.
	myGeneBatchSize = 1000
)

// MyGeneClient looks up identifiers with the MyGene.info batch query endpoint.
type MyGeneClient struct {
	baseURL string
	http    *httpClient
}

// NewMyGeneClient builds a client from configuration.
func NewMyGeneClient(cfg MyGeneConfig) *MyGeneClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultMyGeneURL
	}
	return &MyGeneClient{
		baseURL: base,
		http: newHTTPClient(clientConfig{
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
			RateLimit: cfg.RateLimit,
			RateBurst: cfg.RateBurst,
			UserAgent: cfg.UserAgent,
		}),
	}
}

// Lookup implements Lookup. Inputs larger than the service limit are sent in
// consecutive batches and the hits concatenated in order.
func (c *MyGeneClient) Lookup(ctx context.Context, ids []string, scope Scope, organism Organism) ([]LookupHit, error) {
	var hits []LookupHit
	for start := 0; start < len(ids); start += myGeneBatchSize {
		end := min(start+myGeneBatchSize, len(ids))
		batch, err := c.query(ctx, ids[start:end], scope, organism)
		if err != nil {
			return nil, err
		}
		hits = append(hits, batch...)
	}
	return hits, nil
}

func (c *MyGeneClient) query(ctx context.Context, ids []string, scope Scope, organism Organism) ([]LookupHit, error) {
	form := url.Values{}
	form.Set("q", strings.Join(ids, ","))
	form.Set("scopes", string(scope))
	form.Set("fields", ensemblField)
	if organism != "" {
		form.Set("species", string(organism))
	}
	body, err := c.http.post(ctx, c.baseURL+"/query", "application/x-www-form-urlencoded", form.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("mygene query %s: %w", scope, err)
	}
	return decodeMyGeneHits(body)
}

func decodeMyGeneHits(body []byte) ([]LookupHit, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode mygene response: %w", err)
	}
	hits := make([]LookupHit, 0, len(raw))
	for _, obj := range raw {
		query, _ := obj["query"].(string)
		notFound, _ := obj["notfound"].(bool)
		hit := LookupHit{Query: query}
		if !notFound {
			hit.Candidate = CandidateFromJSON(obj[ensemblKey])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
