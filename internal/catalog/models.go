package catalog

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a downloaded file.
type Status string

const (
	StatusPending    Status = "pending"
	StatusDownloaded Status = "downloaded"
	StatusRouted     Status = "routed"
	StatusError      Status = "error"
)

var allStatuses = []Status{
	StatusPending,
	StatusDownloaded,
	StatusRouted,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// Show is a tracked TV show rooted somewhere under the library tree.
type Show struct {
	ID        int64
	TMDBID    int64
	SysName   string
	SysPath   string
	Aliases   []string
	CreatedAt time.Time
}

// Episode is one catalog episode record. AbsNumber is the sequential
// episode count ignoring season boundaries.
type Episode struct {
	TMDBID    int64
	Season    int
	Episode   int
	AbsNumber int
	Title     string
	AirDate   string
}

// EpisodeRef is the season/episode pair resolved from an absolute number.
type EpisodeRef struct {
	Season  int
	Episode int
}

// DownloadedFile is the durable record for one remote entry that has been
// (or is being) pulled into the local tree. RemotePath is the unique key;
// upsert by that key is the only write path.
type DownloadedFile struct {
	ID               int64
	Name             string
	RemotePath       string
	CurrentPath      string
	PreviousPath     string
	Size             int64
	ModifiedTime     time.Time
	FetchedAt        time.Time
	IsDir            bool
	Status           Status
	HashValue        string
	HashAlgo         string
	HashCalculatedAt *time.Time
	HashTag          string
	ShowName         string
	Season           *int
	Episode          *int
	Confidence       float64
	Reasoning        string
	TMDBID           *int64
	RoutingAttempts  int
	LastRoutingAt    *time.Time
	ErrorMessage     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
