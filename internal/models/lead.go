package models

import "time"

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadClosed    LeadStatus = "closed"
)

var LeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadClosed}

const MaxLeadMessageLength = 1000

// Lead is a tenant's enquiry about a listing, addressed to its owner.
type Lead struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	OwnerID    string     `json:"owner_id"`
	TenantID   string     `json:"tenant_id"`
	Name       string     `json:"name"`
	Phone      string     `json:"phone,omitempty"`
	Message    string     `json:"message"`
	Status     LeadStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// LeadRequest is what a tenant sends with an enquiry. An empty Phone falls
// back to the tenant's profile phone.
type LeadRequest struct {
	Message string `json:"message"`
	Phone   string `json:"phone,omitempty"`
}

// CanTransition reports whether a lead may move from one status to another.
// Closed leads are final.
func CanTransition(from, to LeadStatus) bool {
	switch from {
	case LeadNew:
		return to == LeadContacted || to == LeadClosed
	case LeadContacted:
		return to == LeadClosed
	default:
		return false
	}
}

func ValidLeadStatus(s LeadStatus) bool { return contains(LeadStatuses, s) }

// Dashboard summarises a landlord's listings and leads.
type Dashboard struct {
	Listings map[PropertyStatus]int `json:"listings"`
	Leads    map[LeadStatus]int     `json:"leads"`
	Views    int64                  `json:"views"`
}

// SearchEntry is one remembered search of a signed-in user.
type SearchEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Filter    Filter    `json:"filter"`
	CreatedAt time.Time `json:"created_at"`
}
