package ports

import "context"

// Optional persistent store for transform results, keyed by the full request.
type TransformCache interface {
	// Return the cached result and whether it was present.
	Get(ctx context.Context, req TransformRequest) (TransformResult, bool, error)
	// Store a result for later lookups.
	Put(ctx context.Context, req TransformRequest, res TransformResult) error
}
