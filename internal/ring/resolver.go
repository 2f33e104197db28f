// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ring implements webring navigation and membership management.
// The resolver is pure: it operates on a snapshot of the member list and
// takes its randomness as an input, which keeps traversal decisions
// deterministic under test.
package ring

import (
	"errors"
	"net/url"
	"strings"

	"github.com/toeirei/ringmaster/internal/model"
)

// Direction selects how a ring hop is resolved.
type Direction string

const (
	DirectionNext   Direction = "next"
	DirectionPrev   Direction = "prev"
	DirectionRandom Direction = "random"
)

// ErrEmptyRing is returned when navigation is attempted on a ring with no members.
var ErrEmptyRing = errors.New("ring has no members")

// ErrNoCandidates is returned when a random hop excludes every member.
var ErrNoCandidates = errors.New("no candidate sites for random hop")

// ErrInvalidDirection is returned for an unrecognized traversal direction.
var ErrInvalidDirection = errors.New("invalid traversal direction")

// Resolution is the outcome of a ring hop.
type Resolution struct {
	Target model.Site
	// From is the member the hop is attributed to for analytics. Empty when
	// the hop came from an unknown origin and cannot be attributed.
	From string
}

// Resolve picks the destination for a single ring hop. sites must already be
// in ring order. from is the identifier of the site the visitor came from; an
// unknown or empty from anchors the hop at the first member and leaves the
// resolution unattributed. For random hops, exclude removes the member whose
// URL host matches it (typically the origin itself) from the candidate pool,
// and the hop is attributed to that excluded member; when nothing was
// excluded the hop is unattributed. intn supplies randomness as rand.Intn
// does.
func Resolve(sites []model.Site, from string, dir Direction, exclude string, intn func(int) int) (Resolution, error) {
	if len(sites) == 0 {
		return Resolution{}, ErrEmptyRing
	}

	idx := -1
	for i, s := range sites {
		if s.ID == from {
			idx = i
			break
		}
	}
	loggable := from
	if idx < 0 {
		idx = 0
		loggable = ""
	}

	n := len(sites)
	switch dir {
	case DirectionNext:
		return Resolution{Target: sites[(idx+1)%n], From: loggable}, nil
	case DirectionPrev:
		return Resolution{Target: sites[(idx-1+n)%n], From: loggable}, nil
	case DirectionRandom:
		candidates := make([]model.Site, 0, n)
		excludedID := ""
		for _, s := range sites {
			if exclude != "" && hostOf(s.URL) == normalizeHost(exclude) {
				if excludedID == "" {
					excludedID = s.ID
				}
				continue
			}
			candidates = append(candidates, s)
		}
		if len(candidates) == 0 {
			return Resolution{}, ErrNoCandidates
		}
		return Resolution{Target: candidates[intn(len(candidates))], From: excludedID}, nil
	default:
		return Resolution{}, ErrInvalidDirection
	}
}

// hostOf extracts the lowercased hostname of a site URL. A site whose URL
// fails to parse simply never matches an exclusion.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// normalizeHost accepts either a bare hostname or a full URL as an exclusion
// value and reduces it to a lowercased hostname.
func normalizeHost(v string) string {
	if strings.Contains(v, "://") {
		return hostOf(v)
	}
	return strings.ToLower(v)
}
