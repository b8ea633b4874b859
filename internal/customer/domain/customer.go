package domain

import "strings"

type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	ZipCode     string `json:"zipCode"`
}

type Customer struct {
	ID        string   `json:"id"`
	FirstName string   `json:"firstname" validate:"required"`
	LastName  string   `json:"lastname" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Address   *Address `json:"address,omitempty"`
}

// UpdateRequest carries the fields to change. Blank names and a nil address
// leave the stored values untouched.
type UpdateRequest struct {
	ID        string   `json:"id" validate:"required"`
	FirstName string   `json:"firstname"`
	LastName  string   `json:"lastname"`
	Address   *Address `json:"address,omitempty"`
}

// Merge applies the non-blank fields of req to c.
func (c *Customer) Merge(req UpdateRequest) {
	if strings.TrimSpace(req.FirstName) != "" {
		c.FirstName = req.FirstName
	}
	if strings.TrimSpace(req.LastName) != "" {
		c.LastName = req.LastName
	}
	if req.Address != nil {
		addr := *req.Address
		c.Address = &addr
	}
}
