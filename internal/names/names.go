// Package names implements the name-variant generation pipeline: request
// validation, cache lookup, upstream generation on miss, and best-effort
// cache population.
package names

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Query is a validated request for name variants.
type Query struct {
	Name  string
	Limit int
}

// Result carries the variants produced for a name, ordered most common to
// least common. Candidates may be empty but is always present.
type Result struct {
	Name       string   `json:"name"`
	Candidates []string `json:"candidates"`
}

// ErrInvalidQuery classifies client-correctable validation failures.
var ErrInvalidQuery = eris.New("invalid name query")

// MaxLimit bounds how many variants may be requested in one query.
const MaxLimit = 20

// Validate checks a query against the request contract. maxNameLength caps
// the name length when positive; zero disables the cap.
func Validate(q Query, maxNameLength int) error {
	if strings.TrimSpace(q.Name) == "" {
		return eris.Wrap(ErrInvalidQuery, "name is required")
	}
	if q.Limit <= 0 {
		return eris.Wrap(ErrInvalidQuery, "limit is required")
	}
	if q.Limit > MaxLimit {
		return eris.Wrapf(ErrInvalidQuery, "limit must be less than or equal to %d", MaxLimit)
	}
	if maxNameLength > 0 && len([]rune(q.Name)) > maxNameLength {
		return eris.Wrapf(ErrInvalidQuery, "name must be at most %d characters", maxNameLength)
	}
	return nil
}
