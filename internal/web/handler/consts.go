package handler

const (
	// RootPath is the root path of a route group.
	RootPath = "/"

	// ErrNilACSFatalLogMsg is used if app or cfg or service var pointer is nil.
	ErrNilACSFatalLogMsg = "app, cfg or service is nil"
)
