package domain

import "time"

// Profile holds the biographical inputs submitted once per funnel entry.
type Profile struct {
	Name      string
	Phone     string
	BirthDate time.Time
	Gender    string
}

// Session ties an anonymous visitor to one submitted profile. The access
// token is the sole capability for all subsequent reads and writes; it is
// issued once and never changes, including across tier upgrades.
type Session struct {
	AccessToken string
	ProfileID   string
	Profile     Profile
	CreatedAt   time.Time
}
