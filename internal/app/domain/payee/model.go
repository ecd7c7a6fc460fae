package payee

import (
	"strings"
	"time"
)

// Address is the postal address of a payee.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip,omitempty"`
}

// Payee is an entity that can be paid. JSON field names double as the column
// field paths used for sorting ("payeeName", "address.city").
type Payee struct {
	ID        string    `json:"id"`
	PayeeName string    `json:"payeeName"`
	Address   Address   `json:"address"`
	Category  string    `json:"category,omitempty"`
	Image     string    `json:"image,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Criteria narrows a payee listing. Empty fields match everything.
type Criteria struct {
	Query string `json:"q,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return strings.TrimSpace(c.Query) == "" && strings.TrimSpace(c.City) == "" && strings.TrimSpace(c.State) == ""
}

// Matches applies case-insensitive substring matching. Query is compared
// against name, city and state; City and State only against their field.
func (c Criteria) Matches(p Payee) bool {
	if q := strings.ToLower(strings.TrimSpace(c.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.PayeeName), q) &&
			!strings.Contains(strings.ToLower(p.Address.City), q) &&
			!strings.Contains(strings.ToLower(p.Address.State), q) {
			return false
		}
	}
	if city := strings.ToLower(strings.TrimSpace(c.City)); city != "" {
		if !strings.Contains(strings.ToLower(p.Address.City), city) {
			return false
		}
	}
	if state := strings.ToLower(strings.TrimSpace(c.State)); state != "" {
		if !strings.Contains(strings.ToLower(p.Address.State), state) {
			return false
		}
	}
	return true
}
