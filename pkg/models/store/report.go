package store

import "time"

// Report is the flattened row shape. Premium sections travel as a JSON
// document so the merge on generation completion stays a single update.
type Report struct {
	AccessToken   string
	Wood          int
	Fire          int
	Earth         int
	Metal         int
	Water         int
	Wealth        int
	Love          int
	Career        int
	Health        int
	SectionsJSON  string
	IsPaid        bool
	IsPremiumPaid bool
	GeneratedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
