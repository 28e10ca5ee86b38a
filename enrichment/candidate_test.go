package enrichment

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gene(id string) Candidate {
	return NewRecord(map[string]Candidate{GeneField: NewScalar(id)})
}

func TestFlatten(t *testing.T) {
	cases := []struct {
		name string
		in   Candidate
		want string
	}{
		{"first element wins", NewSequence(gene("E1"), gene("E2")), "E1"},
		{"record gene field", gene("E9"), "E9"},
		{"scalar", NewScalar("E9"), "E9"},
		{"empty sequence", NewSequence(), "[]"},
		{"absent", NewAbsent(), ""},
		{"sequence of scalars", NewSequence(NewScalar("E3"), NewScalar("E4")), "E3"},
		{"nested sequence", NewSequence(NewSequence(gene("E5")), gene("E6")), "E5"},
		{"record without gene", NewRecord(map[string]Candidate{"protein": NewScalar("P1"), "alias": NewScalar("A")}), "{alias: A, protein: P1}"},
		{"record with list gene", NewRecord(map[string]Candidate{GeneField: NewSequence(NewScalar("E7"), NewScalar("E8"))}), "E7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Flatten(tc.in))
		})
	}
}

func TestCandidatePresent(t *testing.T) {
	assert.False(t, NewAbsent().Present())
	assert.False(t, NewSequence().Present())
	assert.True(t, NewScalar("").Present())
	assert.True(t, NewSequence(NewAbsent()).Present())
	assert.True(t, gene("E1").Present())
}

func TestCandidateFromJSON(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"ensembl":[{"gene":"ENSG01"},{"gene":"ENSG02"}],"n":672,"ok":true,"none":null}`))
	dec.UseNumber()
	var obj map[string]any
	require.NoError(t, dec.Decode(&obj))

	c := CandidateFromJSON(obj["ensembl"])
	require.Equal(t, KindSequence, c.Kind)
	assert.Len(t, c.Items, 2)
	assert.Equal(t, "ENSG01", Flatten(c))

	assert.Equal(t, NewScalar("672"), CandidateFromJSON(obj["n"]))
	assert.Equal(t, NewScalar("true"), CandidateFromJSON(obj["ok"]))
	assert.Equal(t, NewAbsent(), CandidateFromJSON(obj["none"]))
	assert.Equal(t, NewAbsent(), CandidateFromJSON(obj["missing"]))
}
