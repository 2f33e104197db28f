// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// Package analytics records ring traffic counters and serves read-only
// projections of them. All increments are atomic upsert-increments in the
// store; this package never does read-modify-write on a counter.
package analytics

import (
	"errors"

	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/model"
)

// ErrUnknownSite is returned when analytics are requested for an id that is
// not a ring member.
var ErrUnknownSite = errors.New("unknown site")

// Recorder tallies visits and referrals.
type Recorder struct {
	store db.Store
}

// NewRecorder returns a Recorder backed by the given store.
func NewRecorder(store db.Store) *Recorder {
	return &Recorder{store: store}
}

// Record tallies one hop landing on `to`. When `from` is non-empty the hop is
// also attributed to the referring member. Callers on the redirect path treat
// a returned error as log-and-continue; recording must never block or fail
// the user-facing redirect.
func (r *Recorder) Record(from, to string) error {
	if err := r.store.IncrementVisit(to); err != nil {
		return err
	}
	if from == "" {
		return nil
	}
	return r.store.IncrementReferral(to, from)
}

// Get returns the analytics projection for a ring member.
func (r *Recorder) Get(siteID string) (*model.SiteAnalytics, error) {
	site, err := r.store.GetSite(siteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, ErrUnknownSite
	}

	total, err := r.store.GetVisitTotal(siteID)
	if err != nil {
		return nil, err
	}
	refs, err := r.store.GetReferrals(siteID)
	if err != nil {
		return nil, err
	}
	return &model.SiteAnalytics{SiteID: siteID, TotalVisits: total, Referrals: refs}, nil
}
