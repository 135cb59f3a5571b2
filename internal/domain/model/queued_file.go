package model

import (
	"path/filepath"
	"strings"
)

// QueuedFile is the in-memory unit of work handed from upload intake to the
// ingest worker. It is never persisted; losing the queue loses it.
type QueuedFile struct {
	FileName string
	JobID    int64
	Content  []byte
}

// CleanFileName drops any directory part and surrounding whitespace from an
// uploaded file name. An empty result means no usable name was sent.
func CleanFileName(name string) string {
	name = strings.TrimSpace(filepath.Base(strings.TrimSpace(name)))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
