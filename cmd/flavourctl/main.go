package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0
	ExitNoMatch = 1 // Query ran but nothing was found
	ExitError   = 2 // Configuration, input or runtime error
)

// NoResultsError reports a query that completed without any recipe to show.
type NoResultsError struct {
	Message string
}

func (e *NoResultsError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var noResults *NoResultsError
		if errors.As(err, &noResults) {
			os.Exit(ExitNoMatch)
		}
		os.Exit(ExitError)
	}
}
