// internal/models/contact.go
package models

import (
	"time"
)

// Contact is a customer/lead record mirrored from the CRM. Email is the
// practical natural key: the same human can arrive through two flows
// (contact form, newsletter) before a CRM ID is known, and both must
// converge on one stored record.
type Contact struct {
	CRMContactID string            `json:"crmContactId,omitempty"`
	Email        string            `json:"email"`
	FirstName    string            `json:"firstName,omitempty"`
	LastName     string            `json:"lastName,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Address      *Address          `json:"address,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
	IsActive     bool              `json:"isActive"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}
