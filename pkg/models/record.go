package models

import "fmt"

// Candidate is a record pulled from one provider page, before validation.
// It is built fresh per listing and never mutated afterwards.
type Candidate struct {
	Name     string
	Email    string
	Phone    string
	Website  string
	Address  string
	Category string
	Provider ProviderKind
}

// BusinessRecord is a validated record: Name and Email are always non-empty.
type BusinessRecord struct {
	Name     string
	Email    string
	Phone    string
	Website  string
	Address  string
	Category string
}

// DropReason says why a listing did not become a BusinessRecord.
type DropReason int

const (
	DropNone DropReason = iota
	DropNoName
	DropNoEmail
	DropDuplicate
)

func (r DropReason) String() string {
	switch r {
	case DropNoName:
		return "missing name"
	case DropNoEmail:
		return "missing email"
	case DropDuplicate:
		return "duplicate"
	default:
		return "none"
	}
}

// CategoryBlock is the outcome for one (region, category) pair: up to the
// quota of validated records, plus a marker note when the quota was missed.
type CategoryBlock struct {
	Category string
	Records  []BusinessRecord
	Marker   string // non-empty when the category fell short of quota
}

func (b CategoryBlock) Shortfall() bool { return b.Marker != "" }

// ShortfallText is the marker row text for an under-quota category.
func ShortfallText(quota int, category string) string {
	return fmt.Sprintf("Less than %d records available for %s", quota, category)
}

// HarvestResult is the final output for one region: category blocks in
// category-declaration order.
type HarvestResult struct {
	RegionKey string
	Blocks    []CategoryBlock
}

// ExportHeader is the fixed column order every sink writes.
func ExportHeader() []string {
	return []string{"Business Name", "Email", "Phone", "Website", "Address", "Category"}
}

func (r BusinessRecord) Row() []string {
	return []string{r.Name, r.Email, r.Phone, r.Website, r.Address, r.Category}
}

// Rows flattens the block into export rows. The marker row, when present,
// always comes after the real records.
func (b CategoryBlock) Rows() [][]string {
	rows := make([][]string, 0, len(b.Records)+1)
	for _, rec := range b.Records {
		rows = append(rows, rec.Row())
	}
	if b.Marker != "" {
		rows = append(rows, []string{b.Marker, "", "", "", "", b.Category})
	}
	return rows
}

func (h HarvestResult) Rows() [][]string {
	var rows [][]string
	for _, b := range h.Blocks {
		rows = append(rows, b.Rows()...)
	}
	return rows
}

// RecordCount counts real records across all blocks, markers excluded.
func (h HarvestResult) RecordCount() int {
	n := 0
	for _, b := range h.Blocks {
		n += len(b.Records)
	}
	return n
}
