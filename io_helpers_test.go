package main

import (
	"errors"
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/data/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yashubustudio/goenrich/enrichment"
)

func TestBuildColumnChoices(t *testing.T) {
	meta := enrichment.InputFileMetadata{
		Columns: []string{"id", "", "Gene Symbol"},
		Samples: []string{"1", "x", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"},
	}
	choices := buildColumnChoices(meta)
	require.Len(t, choices, 3)
	assert.Equal(t, "[1] id (e.g. 1)", choices[0].Label)
	assert.Equal(t, "#2", choices[1].Name)
	assert.Equal(t, "[3] Gene Symbol (e.g. ABCDEFGHIJKLMNOPQRST…)", choices[2].Label)

	assert.Equal(t, "Gene Symbol", columnForLabel(choices, choices[2].Label))
	assert.Equal(t, "", columnForLabel(choices, "missing"))
	assert.Equal(t, choices[2].Label, labelForColumn(choices, "gene symbol"))
	assert.Equal(t, []string{choices[0].Label, choices[1].Label, choices[2].Label}, columnLabels(choices))
}

func TestBuildTableData(t *testing.T) {
	data := buildTableData([]enrichment.Record{{Category: "KEGG_PATHWAY", Term: "hsa05200", PValue: 1}})
	require.Len(t, data, 2)
	assert.Equal(t, enrichment.TableHeader, data[0])
	assert.Equal(t, "KEGG_PATHWAY", data[1][0])

	data[0][0] = "changed"
	assert.Equal(t, "Category", enrichment.TableHeader[0])
}

func TestOutcomeMessage(t *testing.T) {
	cases := []struct {
		err   error
		title string
	}{
		{enrichment.ErrResolutionEmpty, "No Matches"},
		{&enrichment.AuthError{Err: errors.New("rejected")}, "Auth Error"},
		{&enrichment.SubmissionError{Step: "addList", Err: errors.New("0 accepted")}, "Upload Error"},
		{errors.New("boom"), "Error"},
	}
	for _, tc := range cases {
		title, msg := outcomeMessage(tc.err)
		assert.Equal(t, tc.title, title)
		assert.NotEmpty(t, msg)
	}
}

func TestValidateRunInput(t *testing.T) {
	assert.Error(t, validateRunInput("", "me@example.org"))
	assert.Error(t, validateRunInput("genes.csv", "  "))
	assert.NoError(t, validateRunInput("genes.csv", "me@example.org"))
}

func TestOutputPaths(t *testing.T) {
	in := filepath.Join("data", "run1", "genes.csv")
	dir, table := outputPaths(in, "Gene Symbol")
	assert.Equal(t, filepath.Join("data", "run1"), dir)
	assert.Equal(t, filepath.Join("data", "run1", "GO_Gene Symbol.csv"), table)
}

func TestSummaryText(t *testing.T) {
	res := enrichment.Result{
		Scope:      enrichment.ScopeSymbol,
		IDs:        []enrichment.CanonicalID{"ENSG1", "ENSG2"},
		Unresolved: []string{"bogus"},
		Table:      make([]enrichment.Record, 3),
	}
	assert.Equal(t, "2 valid ENSEMBL IDs found via symbol, 1 unresolved. 3 enriched terms.", summaryText(res))
}

func TestInitialSpecies(t *testing.T) {
	assert.Equal(t, "Mouse", initialSpecies("mouse"))
	assert.Equal(t, "Fruit fly", initialSpecies("Fruit fly"))
	assert.Equal(t, "Human", initialSpecies(""))
	assert.Equal(t, "Human", initialSpecies("9823"))
}

func TestLogCaptureKeepsTail(t *testing.T) {
	b := binding.NewString()
	capture := &logCapture{binding: b, limit: 2}
	_, err := capture.Write([]byte("one\ntwo\r\nthree\n"))
	require.NoError(t, err)
	got, _ := b.Get()
	assert.Equal(t, "two\nthree", got)
}
