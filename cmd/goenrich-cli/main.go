package main

import (
	"errors"
	"fmt"
	"os"

	"yashubustudio/goenrich/enrichment"
)

// Exit codes reported for each pipeline outcome.
const (
	exitOK         = 0
	exitFailure    = 1
	exitNoMatches  = 2
	exitAuth       = 3
	exitSubmission = 4
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "goenrich-cli: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var authErr *enrichment.AuthError
	var subErr *enrichment.SubmissionError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, enrichment.ErrResolutionEmpty):
		return exitNoMatches
	case errors.As(err, &authErr):
		return exitAuth
	case errors.As(err, &subErr):
		return exitSubmission
	default:
		return exitFailure
	}
}
