package assets

import "errors"

var (
	// ErrNotFound signals that the requested file does not exist or is not a regular file.
	ErrNotFound = errors.New("asset not found")
	// ErrOutsideRoot signals a path that would escape the asset root.
	ErrOutsideRoot = errors.New("asset path escapes root")
	// ErrUnreadable signals that the file exists but could not be read.
	ErrUnreadable = errors.New("asset unreadable")
)
