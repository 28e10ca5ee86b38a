package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"yashubustudio/goenrich/enrichment"
)

type columnChoice struct {
	Name  string
	Label string
}

func buildColumnChoices(meta enrichment.InputFileMetadata) []columnChoice {
	choices := make([]columnChoice, 0, len(meta.Columns))
	for col, header := range meta.Columns {
		name := header
		if name == "" {
			name = fmt.Sprintf("#%d", col+1)
		}
		label := fmt.Sprintf("[%d] %s", col+1, name)
		if col < len(meta.Samples) && meta.Samples[col] != "" {
			label = fmt.Sprintf("%s (e.g. %s)", label, truncateSampleValue(meta.Samples[col], 20))
		}
		choices = append(choices, columnChoice{Name: name, Label: label})
	}
	return choices
}

func columnLabels(choices []columnChoice) []string {
	labels := make([]string, len(choices))
	for i, c := range choices {
		labels[i] = c.Label
	}
	return labels
}

// columnForLabel maps a select label back to the column name.
func columnForLabel(choices []columnChoice, label string) string {
	for _, c := range choices {
		if c.Label == label {
			return c.Name
		}
	}
	return ""
}

func labelForColumn(choices []columnChoice, name string) string {
	for _, c := range choices {
		if strings.EqualFold(c.Name, name) {
			return c.Label
		}
	}
	return ""
}

func truncateSampleValue(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}

func buildTableData(records []enrichment.Record) [][]string {
	data := make([][]string, 1, len(records)+1)
	data[0] = append([]string(nil), enrichment.TableHeader...)
	for _, rec := range records {
		data = append(data, rec.Row())
	}
	return data
}

func columnWidth(col int) float32 {
	switch col {
	case 1:
		return 320
	case 5:
		return 260
	case 0:
		return 150
	default:
		return 90
	}
}

// outcomeMessage returns the dialog title and text for a failed run.
func outcomeMessage(err error) (string, string) {
	var authErr *enrichment.AuthError
	var subErr *enrichment.SubmissionError
	switch {
	case errors.Is(err, enrichment.ErrResolutionEmpty):
		return "No Matches", "No valid ENSEMBL IDs were found for the selected species."
	case errors.As(err, &authErr):
		return "Auth Error", "DAVID authentication failed. Check the registered email address."
	case errors.As(err, &subErr):
		return "Upload Error", fmt.Sprintf("DAVID did not complete the analysis: %v", subErr)
	default:
		return "Error", err.Error()
	}
}

// validateRunInput checks the form before a run is started.
func validateRunInput(path, email string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("select a gene list file first")
	}
	if strings.TrimSpace(email) == "" {
		return errors.New("enter the email address registered with DAVID")
	}
	return nil
}

// outputPaths returns where the submitted ID list and the result table are
// written for a given input file and column.
func outputPaths(inputPath, column string) (dir, table string) {
	dir = filepath.Dir(inputPath)
	return dir, filepath.Join(dir, enrichment.ResultFileName(column))
}

func summaryText(res enrichment.Result) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(res.IDs)))
	b.WriteString(" valid ENSEMBL IDs found")
	if res.Scope != "" {
		fmt.Fprintf(&b, " via %s", res.Scope)
	}
	if n := len(res.Unresolved); n > 0 {
		fmt.Fprintf(&b, ", %d unresolved", n)
	}
	fmt.Fprintf(&b, ". %d enriched terms.", len(res.Table))
	return b.String()
}
