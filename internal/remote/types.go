package remote

import "time"

// Entry describes one file or directory observed on the remote server.
type Entry struct {
	Name         string
	Path         string
	Size         int64
	ModifiedTime time.Time
	IsDir        bool
	FetchedAt    time.Time
}
