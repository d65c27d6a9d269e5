package store

import "time"

type Session struct {
	AccessToken string
	ProfileID   string
	Name        string
	Phone       string
	BirthDate   time.Time
	Gender      string
	CreatedAt   time.Time
}
