package domain

import "time"

// Account is an identity record. PasswordHash never leaves the service.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the claim set bound into bearer tokens for this account.
func (a *Account) Identity() Identity {
	return Identity{SubjectID: a.ID, Name: a.Name, Email: a.Email}
}
