package params

// Well-known request parameter names.
const (
	// AssumeContentType overrides the content type reported by the stream.
	AssumeContentType = "update.contentType"

	// WriterType selects the response writer.
	WriterType = "wt"

	// Update command directives, honored after all streams are loaded.
	Commit       = "commit"
	Optimize     = "optimize"
	Rollback     = "rollback"
	WaitSearcher = "waitSearcher"
	SoftCommit   = "softCommit"
	CommitWithin = "commitWithin"
	Overwrite    = "overwrite"

	// JSONCommand controls whether JSON payloads are parsed as command
	// objects (true, the default) or as bare documents (false).
	JSONCommand = "json.command"

	// StreamBody carries an inline payload as a request parameter;
	// StreamContentType sets its content type.
	StreamBody        = "stream.body"
	StreamContentType = "stream.contentType"
)
