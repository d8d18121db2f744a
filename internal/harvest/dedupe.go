package harvest

import (
	"leadharvest/pkg/models"
	"strings"
)

// identity is the duplicate key: name and email, case-folded. Two providers
// listing the same business under different capitalization collapse to one.
type identity struct {
	name  string
	email string
}

// Dedupe accumulates the validated records for one category. Listings
// missing a mandatory field are rejected, duplicates keep their first
// sighting, and insertion order is preserved throughout.
type Dedupe struct {
	seen     map[identity]struct{}
	accepted []models.BusinessRecord
}

func NewDedupe() *Dedupe {
	return &Dedupe{seen: make(map[identity]struct{})}
}

// Add validates the candidate and reports why it was rejected, or DropNone
// when it was accepted.
func (d *Dedupe) Add(c models.Candidate) models.DropReason {
	if c.Name == "" {
		return models.DropNoName
	}
	if c.Email == "" {
		return models.DropNoEmail
	}

	id := identity{name: strings.ToLower(c.Name), email: strings.ToLower(c.Email)}
	if _, dup := d.seen[id]; dup {
		return models.DropDuplicate
	}
	d.seen[id] = struct{}{}

	d.accepted = append(d.accepted, models.BusinessRecord{
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Website:  c.Website,
		Address:  c.Address,
		Category: c.Category,
	})
	return models.DropNone
}

// Count returns how many records have been accepted so far.
func (d *Dedupe) Count() int { return len(d.accepted) }

// Records returns the accepted records in insertion order, truncated to
// limit when limit is positive.
func (d *Dedupe) Records(limit int) []models.BusinessRecord {
	if limit > 0 && len(d.accepted) > limit {
		return d.accepted[:limit:limit]
	}
	return d.accepted
}
