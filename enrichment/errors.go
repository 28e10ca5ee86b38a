package enrichment

import (
	"errors"
	"fmt"
)

// ErrResolutionEmpty is returned when no identifier scope produced a match.
var ErrResolutionEmpty = errors.New("could not detect input type or retrieve ENSEMBL IDs")

// AuthError reports a rejected or failed authentication with the enrichment service.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return "enrichment service rejected the credential"
	}
	return fmt.Sprintf("authenticate: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SubmissionError reports that the service did not accept the gene list or
// failed a later protocol step.
type SubmissionError struct {
	Step string
	Err  error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: enrichment service did not accept the gene list", e.Step)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
