package index

import (
	"context"
	"fmt"
	"strings"

	"github.com/seekframe/indexd/types"
)

// CommitOptions control how staged updates are published.
type CommitOptions struct {
	// Optimize compacts the backing storage after publishing.
	Optimize bool
	// WaitSearcher blocks until the published view is visible to reads.
	WaitSearcher bool
	// SoftCommit publishes visibility without forcing a durable flush.
	SoftCommit bool
}

// Store is the document store contract. Mutations are staged until
// Commit publishes them; Rollback discards everything staged. Get is
// realtime and sees staged documents before they are committed.
type Store interface {
	// Put stages a document. With overwrite false, an existing
	// document with the same ID is kept and the new one is dropped.
	Put(ctx context.Context, doc *types.Document, overwrite bool) error

	// Delete stages removal of the document with the given ID.
	Delete(ctx context.Context, id string) error

	// DeleteQuery stages removal of every document matching the
	// query. Supported forms: "*:*" and "field:value".
	DeleteQuery(ctx context.Context, query string) error

	// Get returns the document with the given ID, consulting staged
	// changes first. Missing documents yield a NOT_FOUND coded error.
	Get(ctx context.Context, id string) (*types.Document, error)

	// Commit publishes all staged changes.
	Commit(ctx context.Context, opts CommitOptions) error

	// Rollback discards all staged changes.
	Rollback(ctx context.Context) error

	// Count returns the number of committed documents.
	Count(ctx context.Context) (int64, error)

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error

	// Name returns the backend name for logs and metrics.
	Name() string
}

// parseQuery interprets the minimal delete-by-query syntax: "*:*"
// matches everything, "field:value" matches exact field values.
func parseQuery(query string) (field, value string, all bool, err error) {
	if query == "*:*" {
		return "", "", true, nil
	}
	idx := strings.Index(query, ":")
	if idx <= 0 || idx == len(query)-1 {
		return "", "", false, types.NewError(types.ErrInvalidRequest,
			fmt.Sprintf("unsupported delete query %q", query))
	}
	return query[:idx], query[idx+1:], false, nil
}

// matchField reports whether doc carries the given field value. The
// "id" field matches against the document ID. Multi-valued fields
// match when any element matches.
func matchField(doc *types.Document, field, value string) bool {
	if field == "id" && doc.ID == value {
		return true
	}
	v, ok := doc.Fields[field]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if fmt.Sprint(item) == value {
				return true
			}
		}
		return false
	default:
		return fmt.Sprint(t) == value
	}
}

// notFound builds the coded error returned for missing documents.
func notFound(id string) error {
	return types.NewError(types.ErrNotFound, fmt.Sprintf("document %q not found", id)).
		WithHTTPStatus(404)
}
