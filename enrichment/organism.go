package enrichment

import "strings"

// Organism is a species tag understood by the annotation service.
type Organism string

// OrganismChoice pairs a display label with its service tag.
type OrganismChoice struct {
	Label    string
	Organism Organism
}

var organismChoices = []OrganismChoice{
	{Label: "Fruit fly", Organism: "fruitfly"},
	{Label: "Human", Organism: "human"},
	{Label: "Mouse", Organism: "mouse"},
	{Label: "Rat", Organism: "rat"},
	{Label: "Zebrafish", Organism: "zebrafish"},
}

// OrganismChoices returns the organisms offered by the front ends.
func OrganismChoices() []OrganismChoice {
	out := make([]OrganismChoice, len(organismChoices))
	copy(out, organismChoices)
	return out
}

// OrganismLabels returns the display labels in menu order.
func OrganismLabels() []string {
	out := make([]string, len(organismChoices))
	for i, c := range organismChoices {
		out[i] = c.Label
	}
	return out
}

// ParseOrganism accepts a display label or a tag, case-insensitively.
// Unknown tags such as taxonomy IDs are passed through unchanged.
func ParseOrganism(s string) (Organism, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	for _, c := range organismChoices {
		if strings.EqualFold(trimmed, c.Label) || strings.EqualFold(trimmed, string(c.Organism)) {
			return c.Organism, true
		}
	}
	return Organism(trimmed), true
}
