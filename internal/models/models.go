package models

import (
	"time"
)

// SourceTarget is an operator-registered URL the ingestion pipeline may scrape.
type SourceTarget struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Title      string     `json:"title,omitempty"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

// JobListing is one normalized posting. Link is the natural key: storage
// keeps at most one row per link, first writer wins.
type JobListing struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Valid reports whether the listing meets the minimum bar for persistence.
// Only title and link are required; everything else may be empty.
func (j JobListing) Valid() bool {
	return j.Title != "" && j.Link != ""
}

// RunResult is the final outcome of one scheduled ingestion run.
// NewListings holds the records this run stored for the first time
// (duplicates excluded); it feeds notifications, not the JSON summary.
type RunResult struct {
	Target      *SourceTarget `json:"target,omitempty"`
	JobsFound   int           `json:"jobsFound"`
	JobsSaved   int           `json:"jobsSaved"`
	Success     bool          `json:"success"`
	Error       string        `json:"error,omitempty"`
	NewListings []JobListing  `json:"-"`
}
