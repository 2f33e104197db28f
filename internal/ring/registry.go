// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

package ring

import (
	"errors"
	"fmt"

	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/model"
)

// ErrInvalidReorder is returned when a reorder request does not name exactly
// the current ring membership.
var ErrInvalidReorder = errors.New("reorder must list every current member exactly once")

// ErrSiteExists is returned when adding a member whose id is already in the ring.
var ErrSiteExists = errors.New("site already in ring")

// ErrSiteNotFound is returned when a member lookup or removal misses.
var ErrSiteNotFound = errors.New("site not in ring")

// Registry manages ring membership on top of a Store.
type Registry struct {
	store db.Store
}

// NewRegistry returns a Registry backed by the given store.
func NewRegistry(store db.Store) *Registry {
	return &Registry{store: store}
}

// List returns the current members in ring order.
func (r *Registry) List() ([]model.Site, error) {
	return r.store.ListSites()
}

// Get returns a single member by id.
func (r *Registry) Get(id string) (*model.Site, error) {
	site, err := r.store.GetSite(id)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, ErrSiteNotFound
	}
	return site, nil
}

// Add inserts a new member. When atPosition is nil the site joins at the end
// of the ring; otherwise the ring is re-sequenced so the site lands at the
// given index (clamped to the current membership).
func (r *Registry) Add(site model.Site, atPosition *int) (*model.Site, error) {
	next, err := r.store.NextSitePosition()
	if err != nil {
		return nil, err
	}
	site.Position = next
	if err := r.store.InsertSite(site); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrSiteExists, site.ID)
		}
		return nil, err
	}

	if atPosition != nil {
		sites, err := r.store.ListSites()
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(sites))
		for _, s := range sites {
			if s.ID != site.ID {
				ids = append(ids, s.ID)
			}
		}
		at := *atPosition
		if at < 0 {
			at = 0
		}
		if at > len(ids) {
			at = len(ids)
		}
		ids = append(ids[:at], append([]string{site.ID}, ids[at:]...)...)
		if err := r.store.ReorderSites(ids); err != nil {
			return nil, err
		}
		site.Position = at
	}
	return &site, nil
}

// Reorder re-sequences the ring to match ids. The request must be a
// permutation of the current membership; anything else leaves positions
// untouched and returns ErrInvalidReorder.
func (r *Registry) Reorder(ids []string) error {
	current, err := r.store.ListSites()
	if err != nil {
		return err
	}
	if len(ids) != len(current) {
		return ErrInvalidReorder
	}
	seen := make(map[string]bool, len(current))
	for _, s := range current {
		seen[s.ID] = true
	}
	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] || requested[id] {
			return ErrInvalidReorder
		}
		requested[id] = true
	}
	return r.store.ReorderSites(ids)
}

// Remove deletes a member and its analytics counters. Removing an id that is
// not in the ring is a no-op; removal doubles as cleanup for counters left
// behind by racing visit recordings.
func (r *Registry) Remove(id string) error {
	return r.store.DeleteSite(id)
}
