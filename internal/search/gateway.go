package search

import (
	"context"
	"time"
)

// Hit is one raw search result
type Hit struct {
	URL         string
	Title       string
	Snippet     string
	PublishedAt *time.Time
}

// Gateway answers site-scoped queries for the verification orchestrator.
// Implementations must never fail the caller: internal errors resolve to an
// empty hit list.
type Gateway interface {
	Search(ctx context.Context, query string, maxResults int) []Hit
}
