package enrichment

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// CandidateKind tags the shape held by a Candidate.
type CandidateKind int

const (
	KindAbsent CandidateKind = iota
	KindScalar
	KindRecord
	KindSequence
)

// GeneField is the record field that carries the canonical ID.
const GeneField = "gene"

// Candidate is one lookup result value: absent, a scalar, a keyed record or
// an ordered sequence of further candidates.
type Candidate struct {
	Kind   CandidateKind
	Scalar string
	Fields map[string]Candidate
	Items  []Candidate
}

// NewAbsent returns the empty candidate.
func NewAbsent() Candidate { return Candidate{} }

// NewScalar wraps a plain value.
func NewScalar(v string) Candidate { return Candidate{Kind: KindScalar, Scalar: v} }

// NewRecord wraps a keyed record.
func NewRecord(fields map[string]Candidate) Candidate {
	return Candidate{Kind: KindRecord, Fields: fields}
}

// NewSequence wraps equally ranked candidates in service order.
func NewSequence(items ...Candidate) Candidate {
	return Candidate{Kind: KindSequence, Items: items}
}

// Present reports whether the candidate can yield an ID. Empty sequences
// count as absent.
func (c Candidate) Present() bool {
	switch c.Kind {
	case KindAbsent:
		return false
	case KindSequence:
		return len(c.Items) > 0
	default:
		return true
	}
}

// Flatten reduces a candidate to a single ID string. The first element of a
// sequence wins; records yield their gene field. Never fails.
func Flatten(c Candidate) string {
	switch c.Kind {
	case KindSequence:
		if len(c.Items) == 0 {
			return c.String()
		}
		return Flatten(c.Items[0])
	case KindRecord:
		if v, ok := c.Fields[GeneField]; ok {
			return Flatten(v)
		}
		return c.String()
	case KindScalar:
		return c.Scalar
	default:
		return ""
	}
}

// String renders the candidate for display. Record keys are sorted.
func (c Candidate) String() string {
	var b strings.Builder
	c.write(&b)
	return b.String()
}

func (c Candidate) write(b *strings.Builder) {
	switch c.Kind {
	case KindScalar:
		b.WriteString(c.Scalar)
	case KindSequence:
		b.WriteByte('[')
		for i, item := range c.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.write(b)
		}
		b.WriteByte(']')
	case KindRecord:
		keys := make([]string, 0, len(c.Fields))
		for k := range c.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			c.Fields[k].write(b)
		}
		b.WriteByte('}')
	}
}

// CandidateFromJSON converts a value produced by encoding/json (decoded with
// UseNumber) into a Candidate.
func CandidateFromJSON(v any) Candidate {
	switch t := v.(type) {
	case nil:
		return NewAbsent()
	case string:
		return NewScalar(t)
	case json.Number:
		return NewScalar(t.String())
	case float64:
		return NewScalar(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		return NewScalar(strconv.FormatBool(t))
	case []any:
		items := make([]Candidate, 0, len(t))
		for _, item := range t {
			items = append(items, CandidateFromJSON(item))
		}
		return NewSequence(items...)
	case map[string]any:
		fields := make(map[string]Candidate, len(t))
		for k, item := range t {
			fields[k] = CandidateFromJSON(item)
		}
		return NewRecord(fields)
	default:
		return NewAbsent()
	}
}
