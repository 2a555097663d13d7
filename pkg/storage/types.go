package storage

import "time"

// Run is one recorded scan.
type Run struct {
	ID        string
	Profile   string
	CreatedAt time.Time
}

// RunResult is one ranked badge inside a recorded run. SetPrice is kept as
// the fixed two-decimal string so diffs never touch float math.
type RunResult struct {
	Badge        string
	AppID        int64
	Rarity       string
	Progress     string
	SetPrice     string
	Availability int64
	Unmatched    int64
	Position     int64
}

// RunStat is one run's summary line in the runs listing.
type RunStat struct {
	ID        string
	CreatedAt time.Time
	Badges    int64
	TopBadge  string
	TopPrice  string
}

const (
	ChangeAdded   = "added"
	ChangeUpdated = "updated"
	ChangeRemoved = "removed"
)

// PriceChange is one difference between the two most recent runs.
type PriceChange struct {
	Badge           string
	AppID           int64
	Rarity          string
	ChangeType      string // added | updated | removed
	OldPrice        string
	NewPrice        string
	OldAvailability int64
	NewAvailability int64
}
