package enrichment

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullRawRecord() RawRecord {
	return RawRecord{
		"categoryName":   "GOTERM_BP_DIRECT",
		"termName":       "GO:0006281~DNA repair",
		"listHits":       "2",
		"percent":        "66.66666666666666",
		"ease":           "0.0031",
		"geneIds":        "ENSG00000012048, ENSG00000141510",
		"listTotals":     "3",
		"popHits":        "402",
		"popTotals":      "18000",
		"foldEnrichment": "29.85",
		"bonferroni":     "0.21",
		"benjamini":      "0.11",
		"afdr":           "0.09",
	}
}

func TestParseFullRecord(t *testing.T) {
	got := Parse([]RawRecord{fullRawRecord()})
	assert.Equal(t, []Record{{
		Category:       "GOTERM_BP_DIRECT",
		Term:           "GO:0006281~DNA repair",
		ListHits:       2,
		Percent:        "66.66666666666666",
		PValue:         0.0031,
		GeneIDs:        "ENSG00000012048, ENSG00000141510",
		ListTotal:      3,
		PopHits:        402,
		PopTotal:       18000,
		FoldEnrichment: 29.85,
		Bonferroni:     0.21,
		Benjamini:      0.11,
		FDR:            0.09,
	}}, got)
}

func TestParseDefaultsMissingAndInvalidFields(t *testing.T) {
	raw := fullRawRecord()
	delete(raw, "listHits")
	raw["ease"] = "not-a-number"

	want := Parse([]RawRecord{fullRawRecord()})[0]
	want.ListHits = 0
	want.PValue = 1.0

	assert.Equal(t, []Record{want}, Parse([]RawRecord{raw}))
}

func TestParseEmptyRecordIsFullyDefaulted(t *testing.T) {
	got := Parse([]RawRecord{{}})
	assert.Equal(t, []Record{{
		PValue:     1.0,
		Bonferroni: 1.0,
		Benjamini:  1.0,
		FDR:        1.0,
	}}, got)
}

func TestParseCoercion(t *testing.T) {
	raw := RawRecord{
		"categoryName":   nil,
		"termName":       42,
		"listHits":       json.Number("5"),
		"percent":        12.5,
		"ease":           math.NaN(),
		"listTotals":     -3,
		"popHits":        "7.5",
		"popTotals":      float64(100),
		"foldEnrichment": "-2",
		"bonferroni":     1.5,
		"benjamini":      json.Number("bad"),
		"afdr":           0.0,
	}
	got := Parse([]RawRecord{raw})[0]

	assert.Equal(t, "", got.Category)
	assert.Equal(t, "42", got.Term)
	assert.Equal(t, 5, got.ListHits)
	assert.Equal(t, "12.5", got.Percent)
	assert.Equal(t, 1.0, got.PValue)
	assert.Equal(t, 0, got.ListTotal)
	assert.Equal(t, 0, got.PopHits)
	assert.Equal(t, 100, got.PopTotal)
	assert.Equal(t, 0.0, got.FoldEnrichment)
	assert.Equal(t, 1.0, got.Bonferroni)
	assert.Equal(t, 1.0, got.Benjamini)
	assert.Equal(t, 0.0, got.FDR)
}

func TestParseKeepsOrder(t *testing.T) {
	raws := []RawRecord{{"termName": "c"}, {"termName": "a"}, {"termName": "b"}}
	got := Parse(raws)
	terms := []string{got[0].Term, got[1].Term, got[2].Term}
	assert.Equal(t, []string{"c", "a", "b"}, terms)
}
