package parts

import "context"

// Candidate is one catalog search result awaiting user selection.
type Candidate struct {
	Article      string
	Name         string
	Price        string
	Availability string
	Source       string
}

// Searcher maps a (vin, query) pair to candidates in provider-native order.
// Transport and parse problems yield an empty slice, not an error: at the
// conversation level "backend broke" and "nothing found" read the same.
type Searcher interface {
	Search(ctx context.Context, vin, query string) ([]Candidate, error)
}
