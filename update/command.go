package update

import "github.com/seekframe/indexd/types"

// AddCommand stages one document for indexing.
type AddCommand struct {
	Doc *types.Document
	// Overwrite replaces an existing document with the same ID;
	// without it the existing document wins.
	Overwrite bool
	// CommitWithin asks for a commit within this many milliseconds.
	// Zero means no constraint.
	CommitWithin int
}

// DeleteCommand removes documents by ID or by query. Exactly one of
// the two fields is set.
type DeleteCommand struct {
	ID    string
	Query string
}

// CommitCommand publishes everything staged so far.
type CommitCommand struct {
	Optimize     bool
	WaitSearcher bool
	SoftCommit   bool
}

// RollbackCommand discards everything staged so far.
type RollbackCommand struct{}
