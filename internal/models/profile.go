package models

import (
	"math"
	"time"
)

// Profile is a user's public identity; ID equals the authenticated principal ID
type Profile struct {
	ID                        string     `json:"id" db:"id"`
	Username                  *string    `json:"username" db:"username"`
	FullName                  *string    `json:"full_name" db:"full_name"`
	AvatarURL                 *string    `json:"avatar_url" db:"avatar_url"`
	Website                   *string    `json:"website" db:"website"`
	Age                       *int       `json:"age" db:"age"`
	Career                    *string    `json:"career" db:"career"`
	Bio                       *string    `json:"bio" db:"bio"`
	ConsiderationStartDate    *time.Time `json:"consideration_start_date" db:"consideration_start_date"`
	EntrepreneurshipStartDate *time.Time `json:"entrepreneurship_start_date" db:"entrepreneurship_start_date"`
	CreatedAt                 time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt                 *time.Time `json:"updated_at" db:"updated_at"`
}

// Fragment returns the part of the profile joined into articles
func (p *Profile) Fragment() *AuthorFragment {
	if p == nil {
		return nil
	}
	return &AuthorFragment{
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Username:  p.Username,
	}
}

// AuthorFragment is the subset of a profile needed to display an article's author
type AuthorFragment struct {
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
	Username  *string `json:"username"`
}

// ProfileDetails is a profile plus the day counters shown on the profile header
type ProfileDetails struct {
	Profile
	DaysSinceConsideration    *int `json:"days_since_consideration,omitempty"`
	DaysSinceEntrepreneurship *int `json:"days_since_entrepreneurship,omitempty"`
}

// NewProfileDetails derives the day counters relative to now
func NewProfileDetails(p *Profile, now time.Time) *ProfileDetails {
	if p == nil {
		return nil
	}
	d := &ProfileDetails{Profile: *p}
	if p.ConsiderationStartDate != nil {
		n := DaysSince(*p.ConsiderationStartDate, now)
		d.DaysSinceConsideration = &n
	}
	if p.EntrepreneurshipStartDate != nil {
		n := DaysSince(*p.EntrepreneurshipStartDate, now)
		d.DaysSinceEntrepreneurship = &n
	}
	return d
}

// DaysSince returns ceil((now - start) / 1 day), never negative
func DaysSince(start, now time.Time) int {
	diff := now.Sub(start)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// UpsertProfileRequest is the account setup / profile edit payload
type UpsertProfileRequest struct {
	Username                  string `json:"username" form:"username"`
	FullName                  string `json:"full_name" form:"full_name"`
	Age                       *int   `json:"age" form:"age"`
	Career                    string `json:"career" form:"career"`
	Bio                       string `json:"bio" form:"bio"`
	Website                   string `json:"website" form:"website"`
	AvatarURL                 string `json:"avatar_url" form:"avatar_url"`
	ConsiderationStartDate    string `json:"consideration_start_date" form:"consideration_start_date"`
	EntrepreneurshipStartDate string `json:"entrepreneurship_start_date" form:"entrepreneurship_start_date"`
}

// ProfileResult reports the outcome of a profile write
type ProfileResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Profile *ProfileDetails   `json:"profile,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}
