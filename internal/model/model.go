package model

import "time"

// Contact is the data structure for a person in the contact book. Optional
// columns are pointer fields so that NULL survives the round trip through
// both sqlx and JSON.
type Contact struct {
	Id           int64      `json:"id"           db:"id"`
	Name         string     `json:"name"         db:"name"`
	Country      string     `json:"country"      db:"country"`
	PhoneNumber  string     `json:"phone_number" db:"phone_number"`
	Email        *string    `json:"email"        db:"email"`
	Dob          *time.Time `json:"dob"          db:"dob"`
	Photo        *string    `json:"photo"        db:"photo"`
	Relationship *string    `json:"relationship" db:"relationship"`
	Address      *string    `json:"address"      db:"address"`
	IsFavorite   bool       `json:"isFavorite"   db:"isFavorite"`
}

// ContactParams carries the writable fields of a contact for create and
// update operations. PhotoURL is the relative URL of a freshly stored upload;
// nil means "no new photo was submitted" and leaves any stored photo intact.
type ContactParams struct {
	Name         string
	Country      string
	PhoneNumber  string
	Email        *string
	Dob          *time.Time
	PhotoURL     *string
	Relationship *string
	Address      *string
}

// ContactSummary is the reduced contact shape used by the dashboard lists.
type ContactSummary struct {
	Id          int64  `json:"id"           db:"id"`
	Name        string `json:"name"         db:"name"`
	PhoneNumber string `json:"phone_number" db:"phone_number"`
}

// DashboardStats aggregates the numbers shown on the home view. The JSON
// field names are part of the wire contract consumed by the frontend.
type DashboardStats struct {
	TotalContacts      int64            `json:"totalContacts"`
	BirthdaysToday     []ContactSummary `json:"birthdaysToday"`
	BirthdaysThisMonth []ContactSummary `json:"birthdaysThisMonth"`
	BirthdaysNext7Days int64            `json:"birthdaysNext7Days"`
	FavoriteContacts   []ContactSummary `json:"favoriteContacts"`
}
