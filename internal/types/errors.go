package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFilter indicates the request's category filters contained no
	// usable values, so no Overpass query could be built.
	ErrInvalidFilter = errors.New("no valid filter values for category")

	// ErrSourceTimeout indicates the Overpass request exceeded its deadline.
	ErrSourceTimeout = errors.New("overpass request timed out")

	// ErrSourceUnreachable indicates a transport-level failure talking to Overpass.
	ErrSourceUnreachable = errors.New("overpass request failed")

	// ErrMalformedResponse indicates Overpass answered with something that is
	// not a usable elements payload.
	ErrMalformedResponse = errors.New("overpass returned a malformed response")

	// ErrNoCandidates indicates every fetched element was filtered out or
	// deduplicated against the trip's saved places.
	ErrNoCandidates = errors.New("no candidates found for the requested area")

	// ErrRankingUnreachable indicates the Gemini call itself failed.
	ErrRankingUnreachable = errors.New("ranking service unreachable")

	ErrNotFound = errors.New("resource not found")
)

// UnparsableResponseError is returned when the ranking model's text, after
// fence stripping, is not valid JSON. Raw keeps the original text for
// diagnosis.
type UnparsableResponseError struct {
	Raw string
	Err error
}

func (e *UnparsableResponseError) Error() string {
	return fmt.Sprintf("unparsable ranking response: %v", e.Err)
}

func (e *UnparsableResponseError) Unwrap() error {
	return e.Err
}
