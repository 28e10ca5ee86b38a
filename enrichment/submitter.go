package enrichment

import (
	"context"
	"errors"
	"strings"
)

// Protocol constants of the chart report request.
const (
	IDTypeEnsemblGene = "ENSEMBL_GENE_ID"
	DefaultListName   = "uploaded_genes"
	// listTypeGene marks the upload as a gene list rather than a background.
	listTypeGene = 0

	ChartThreshold = 0.1
	ChartMinCount  = 1
)

// DefaultCategories are the annotation categories of every chart report.
var DefaultCategories = []string{
	"GOTERM_BP_DIRECT",
	"GOTERM_CC_DIRECT",
	"GOTERM_MF_DIRECT",
	"KEGG_PATHWAY",
}

var (
	errEmptyCredential = errors.New("credential is empty")
	errEmptyList       = errors.New("gene list is empty")
)

// Submit drives authenticate, addList, setCategories and getChartReport in
// order and stops at the first failing step. An empty categories slice
// selects DefaultCategories.
func Submit(ctx context.Context, svc EnrichmentService, ids []CanonicalID, credential string, categories []string) ([]RawRecord, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, &AuthError{Err: errEmptyCredential}
	}
	if len(ids) == 0 {
		return nil, &SubmissionError{Step: "addList", Err: errEmptyList}
	}
	if len(categories) == 0 {
		categories = DefaultCategories
	}

	ok, err := svc.Authenticate(ctx, credential)
	if err != nil {
		return nil, &AuthError{Err: err}
	}
	if !ok {
		return nil, &AuthError{}
	}

	accepted, err := svc.AddList(ctx, joinIDs(ids), IDTypeEnsemblGene, DefaultListName, listTypeGene)
	if err != nil {
		return nil, &SubmissionError{Step: "addList", Err: err}
	}
	if accepted <= 0 {
		return nil, &SubmissionError{Step: "addList"}
	}

	if err := svc.SetCategories(ctx, categories); err != nil {
		return nil, &SubmissionError{Step: "setCategories", Err: err}
	}

	records, err := svc.GetChartReport(ctx, ChartThreshold, ChartMinCount)
	if err != nil {
		return nil, &SubmissionError{Step: "getChartReport", Err: err}
	}
	return records, nil
}

func joinIDs(ids []CanonicalID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
