// Package visit provides the client visit domain model and the visit records store.
package visit

import "time"

// Status is the lifecycle state of a visit record.
type Status string

const (
	Draft     Status = "draft"
	Submitted Status = "submitted"
)

// ValidStatuses is the set of allowed statuses.
var ValidStatuses = []Status{Draft, Submitted}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case Draft:
		return "Draft"
	case Submitted:
		return "Submitted"
	default:
		return string(s)
	}
}

const (
	// DateLayout is the format of ClientVisit.Date.
	DateLayout = "2006-01-02"
	// TimeLayout is the ISO-8601 format of ClientVisit.SubmittedAt.
	TimeLayout = "2006-01-02T15:04:05.000Z"
)

// Product is one product discussed during a visit.
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	FinalizedRate float64 `json:"finalizedRate"`
	Remarks       string  `json:"remarks,omitempty"`
}

// ClientVisit is one recorded visit to a client business.
type ClientVisit struct {
	ID                  string    `json:"id"`
	ClientName          string    `json:"clientName"`
	BusinessLocation    string    `json:"businessLocation"`
	Date                string    `json:"date"` // YYYY-MM-DD
	Products            []Product `json:"products"`
	MarketingPersonID   string    `json:"marketingPersonId"`
	MarketingPersonName string    `json:"marketingPersonName"`
	Status              Status    `json:"status"`
	SubmittedAt         string    `json:"submittedAt,omitempty"`
}

// SubmittedTime parses SubmittedAt. The second result is false when the
// visit has no timestamp or it does not parse.
func (v ClientVisit) SubmittedTime() (time.Time, bool) {
	if v.SubmittedAt == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, v.SubmittedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// clone copies v's products. Products is never nil in the copy, so every
// visit serializes its products as an array.
func (v ClientVisit) clone() ClientVisit {
	v.Products = append(make([]Product, 0, len(v.Products)), v.Products...)
	return v
}

// Patch lists the fields to overwrite on an existing visit. Nil fields are
// left alone. The id and the attribution fields cannot be patched.
type Patch struct {
	ClientName       *string    `json:"clientName,omitempty"`
	BusinessLocation *string    `json:"businessLocation,omitempty"`
	Date             *string    `json:"date,omitempty"`
	Products         *[]Product `json:"products,omitempty"`
	Status           *Status    `json:"status,omitempty"`
	SubmittedAt      *string    `json:"submittedAt,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.ClientName == nil && p.BusinessLocation == nil && p.Date == nil &&
		p.Products == nil && p.Status == nil && p.SubmittedAt == nil
}

// apply returns a copy of v with the patch fields overwritten.
func (v ClientVisit) apply(p Patch) ClientVisit {
	v = v.clone()
	if p.ClientName != nil {
		v.ClientName = *p.ClientName
	}
	if p.BusinessLocation != nil {
		v.BusinessLocation = *p.BusinessLocation
	}
	if p.Date != nil {
		v.Date = *p.Date
	}
	if p.Products != nil {
		v.Products = append([]Product{}, (*p.Products)...)
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.SubmittedAt != nil {
		v.SubmittedAt = *p.SubmittedAt
	}
	return v
}

// ApplyTo returns v with the patch applied, without touching any store.
func (p Patch) ApplyTo(v ClientVisit) ClientVisit {
	return v.apply(p)
}

// TouchesContent reports whether the patch changes anything the visit form edits.
func (p Patch) TouchesContent() bool {
	return p.ClientName != nil || p.BusinessLocation != nil || p.Date != nil || p.Products != nil
}
