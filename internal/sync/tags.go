// internal/sync/tags.go
package sync

import (
	"github.com/javajoker/storesync/internal/models"
)

// MergeTags unions the stored tag set with the incoming one, preserving
// first-seen order. Contacts are touched by independent flows (contact
// form, newsletter, CRM edits) and a later flow must never undo an earlier
// flow's tag.
func MergeTags(stored, incoming []string) []string {
	seen := make(map[string]bool, len(stored)+len(incoming))
	merged := make([]string, 0, len(stored)+len(incoming))
	for _, tag := range stored {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			merged = append(merged, tag)
		}
	}
	for _, tag := range incoming {
		if tag != "" && !seen[tag] {
			seen[tag] = true
			merged = append(merged, tag)
		}
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

// MergeContact overlays the incoming document onto the stored one. Tags
// always union; scalar fields are taken from the incoming document only
// when non-empty, so an empty incoming phone never erases a known phone.
func MergeContact(incoming *models.Contact, stored *models.Contact) *models.Contact {
	if stored == nil {
		return incoming
	}

	merged := *incoming
	merged.Tags = MergeTags(stored.Tags, incoming.Tags)

	if merged.CRMContactID == "" {
		merged.CRMContactID = stored.CRMContactID
	}
	if merged.Email == "" {
		merged.Email = stored.Email
	}
	if merged.FirstName == "" {
		merged.FirstName = stored.FirstName
	}
	if merged.LastName == "" {
		merged.LastName = stored.LastName
	}
	if merged.Phone == "" {
		merged.Phone = stored.Phone
	}
	if merged.Address == nil {
		merged.Address = stored.Address
	}
	if !stored.CreatedAt.IsZero() {
		merged.CreatedAt = stored.CreatedAt
	}

	if len(stored.CustomFields) > 0 {
		fields := make(map[string]string, len(stored.CustomFields)+len(merged.CustomFields))
		for k, v := range stored.CustomFields {
			fields[k] = v
		}
		for k, v := range merged.CustomFields {
			if v != "" {
				fields[k] = v
			}
		}
		merged.CustomFields = fields
	}

	return &merged
}
