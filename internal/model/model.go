// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the core data structures for Ringmaster.
package model

import (
	"fmt"
	"time"
)

// Site is an approved member of the ring. The ID is the member's domain
// and is the stable identifier navigation and analytics key on.
type Site struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// String returns the domain (url) representation.
func (s Site) String() string {
	return fmt.Sprintf("%s (%s)", s.ID, s.URL)
}

// Submission statuses. A submission starts pending and ends approved or
// denied; there are no further transitions after that.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDenied   = "denied"
)

// Submission is a publicly proposed candidate site awaiting moderation.
// Submissions are never deleted; they remain as an audit trail.
type Submission struct {
	ID        int       `json:"id"`
	IP        string    `json:"ip"`
	Domain    string    `json:"domain"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// VisitCounter tracks total navigation hits landing on a site.
type VisitCounter struct {
	SiteID string `json:"site_id"`
	Total  int    `json:"total"`
}

// ReferralCounter tracks hits on a site attributed to a specific
// referring member.
type ReferralCounter struct {
	SiteID     string `json:"site_id"`
	ReferrerID string `json:"referrer_id"`
	Count      int    `json:"count"`
}

// ReferralCount is the read-side projection of a single referrer's tally.
type ReferralCount struct {
	ReferrerID string `json:"referrer_id"`
	Count      int    `json:"count"`
}

// SiteAnalytics bundles everything the admin surface reports for one site.
type SiteAnalytics struct {
	SiteID      string          `json:"site"`
	TotalVisits int             `json:"totalVisits"`
	Referrals   []ReferralCount `json:"referrals"`
}

// BackupData is the serializable form of the entire database, used by the
// backup/restore commands and for migrating between database backends.
type BackupData struct {
	SchemaVersion int               `json:"schema_version"`
	Sites         []Site            `json:"sites"`
	Submissions   []Submission      `json:"submissions"`
	Visits        []VisitCounter    `json:"visits"`
	Referrals     []ReferralCounter `json:"referrals"`
}
