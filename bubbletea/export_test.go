package bubbletea

// Internal helpers exposed for tests.
var (
	Truncate    = truncate
	ResolvePath = resolvePath
	LoadUpload  = loadUpload
)
