package models

import (
	"time"
)

// Product is a single listing that passed the keyword filter. ID is derived
// from the canonical product URL and stays stable across runs regardless of
// tracking parameters appended to the link.
type Product struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Link    string    `json:"link"`
	Price   string    `json:"price,omitempty"`
	FoundAt time.Time `json:"found_at"`
}

// Seller is a monitored storefront or search-result source.
type Seller struct {
	Name      string    `json:"name"`
	SearchURL string    `json:"search_url"`
	AddedAt   time.Time `json:"added_at,omitzero"`
}

// Candidate is a raw extraction result before filtering and identity
// assignment: a resolved absolute link plus the best title we could find.
type Candidate struct {
	Title string
	Link  string
	Price string
}

// Snapshot maps product id to product for one seller, representing all
// matching products seen as of the last completed run.
type Snapshot map[string]Product

// Clone returns a shallow copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, p := range s {
		out[id] = p
	}
	return out
}

func (s *Seller) Validate() []string {
	var errs []string

	if s.Name == "" {
		errs = append(errs, "seller name is required")
	}

	if s.SearchURL == "" {
		errs = append(errs, "seller search_url is required")
	}

	return errs
}
