package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Review is a core entity describing a single user review fetched from a store.
type Review struct {
	ID     string
	Rating int
	Title  string
	Text   string
	Author string
	Date   time.Time
}

// Validate checks the hard preconditions every pipeline stage relies on.
func (r Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", r.Rating)
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("review text cannot be empty")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("review date is required")
	}
	return nil
}

// WithText returns a copy carrying sanitized text; the author is always
// dropped so it never survives past the cleaning stage.
func (r Review) WithText(text string) Review {
	out := r
	out.Text = text
	out.Author = ""
	return out
}

// Hash is the exact-duplicate identity used by the storage layer.
func (r Review) Hash() string {
	sum := sha256.Sum256([]byte(r.Text + "|" + r.Date.Format("2006-01-02")))
	return hex.EncodeToString(sum[:])
}

// PiiKind enumerates the categories the scrubber recognizes.
type PiiKind string

const (
	PiiEmail    PiiKind = "email"
	PiiPhone    PiiKind = "phone"
	PiiURL      PiiKind = "url"
	PiiUsername PiiKind = "username_or_id"
	PiiName     PiiKind = "name"
)

// PiiFinding is a single match surfaced during scrubbing, kept for
// diagnostics only and never persisted.
type PiiFinding struct {
	Kind  PiiKind
	Value string
}
