package table

import "errors"

// Sentinel kinds for table I/O errors.
var (
	ErrOpen  = errors.New("open table failed")
	ErrWrite = errors.New("write table failed")
)
