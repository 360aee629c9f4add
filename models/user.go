package models

// UserProfile is an optional convenience record. No credentials are ever
// stored with it.
type UserProfile struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	DOB       string `json:"dob,omitempty"`
}
