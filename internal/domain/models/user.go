package models

// DefaultLanguage is applied when a user is created without a language preference.
const DefaultLanguage = "en"

// User is a farmer consuming the dashboard.
type User struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Location          string  `json:"location"`
	Phone             *string `json:"phone"`
	PreferredLanguage string  `json:"preferredLanguage"`
}

// NewUser is the payload accepted when registering a user.
type NewUser struct {
	Name              string  `json:"name" binding:"required"`
	Location          string  `json:"location" binding:"required"`
	Phone             *string `json:"phone"`
	PreferredLanguage string  `json:"preferredLanguage"`
}
