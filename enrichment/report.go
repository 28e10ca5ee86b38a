package enrichment

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Chart report field names as sent by the service.
const (
	fieldCategory       = "categoryName"
	fieldTerm           = "termName"
	fieldListHits       = "listHits"
	fieldPercent        = "percent"
	fieldEase           = "ease"
	fieldGeneIDs        = "geneIds"
	fieldListTotal      = "listTotals"
	fieldPopHits        = "popHits"
	fieldPopTotal       = "popTotals"
	fieldFoldEnrichment = "foldEnrichment"
	fieldBonferroni     = "bonferroni"
	fieldBenjamini      = "benjamini"
	fieldFDR            = "afdr"
)

// Parse converts raw chart records into table rows. Every field defaults
// independently; nothing in a record can make parsing fail. Order is kept.
func Parse(raw []RawRecord) []Record {
	out := make([]Record, 0, len(raw))
	for _, r := range raw {
		out = append(out, parseRecord(r))
	}
	return out
}

func parseRecord(r RawRecord) Record {
	return Record{
		Category:       r.text(fieldCategory),
		Term:           r.text(fieldTerm),
		ListHits:       r.count(fieldListHits),
		Percent:        r.text(fieldPercent),
		PValue:         r.probability(fieldEase),
		GeneIDs:        r.text(fieldGeneIDs),
		ListTotal:      r.count(fieldListTotal),
		PopHits:        r.count(fieldPopHits),
		PopTotal:       r.count(fieldPopTotal),
		FoldEnrichment: r.nonNegative(fieldFoldEnrichment),
		Bonferroni:     r.probability(fieldBonferroni),
		Benjamini:      r.probability(fieldBenjamini),
		FDR:            r.probability(fieldFDR),
	}
}

func (r RawRecord) text(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return formatFloat(v)
	case float32:
		return formatFloat(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (r RawRecord) number(key string) (float64, bool) {
	var f float64
	switch v := r[key].(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// count accepts non-negative integral values; anything else is 0.
func (r RawRecord) count(key string) int {
	f, ok := r.number(key)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// probability accepts values in [0,1]; anything else is 1.
func (r RawRecord) probability(key string) float64 {
	f, ok := r.number(key)
	if !ok || f < 0 || f > 1 {
		return 1.0
	}
	return f
}

func (r RawRecord) nonNegative(key string) float64 {
	f, ok := r.number(key)
	if !ok || f < 0 {
		return 0
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
