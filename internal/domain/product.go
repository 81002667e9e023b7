package domain

import "time"

// OwnedResource is anything whose mutation is restricted to a single owner account.
type OwnedResource interface {
	Owner() string
}

// Product is the owned resource managed through the API. OwnerID is set at
// creation and never changes.
type Product struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Price       float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Owner implements OwnedResource.
func (p *Product) Owner() string {
	return p.OwnerID
}
