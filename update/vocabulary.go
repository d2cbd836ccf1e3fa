package update

// Command vocabulary shared by the wire formats. XML uses these as
// element names, JSON as command-object keys, the binary format as op
// tags.
const (
	CmdAdd      = "add"
	CmdDelete   = "delete"
	CmdCommit   = "commit"
	CmdOptimize = "optimize"
	CmdRollback = "rollback"
)

// Attribute and option names attached to commands.
const (
	AttrOverwrite    = "overwrite"
	AttrCommitWithin = "commitWithin"
	AttrWaitSearcher = "waitSearcher"
	AttrSoftCommit   = "softCommit"
	AttrVersion      = "version"
)
