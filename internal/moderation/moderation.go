// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// Package moderation implements the submission review workflow: visitors
// submit candidate sites, an admin approves or denies them, and approval
// promotes the candidate into the ring.
package moderation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/model"
)

// ErrValidation is returned when a submission's fields are missing or malformed.
var ErrValidation = errors.New("invalid submission")

// ErrDuplicatePending is returned when the source IP already has a pending submission.
var ErrDuplicatePending = errors.New("a pending submission already exists for this address")

// ErrNotFound is returned when the referenced submission does not exist.
var ErrNotFound = errors.New("submission not found")

// ErrInvalidState is returned when approving or denying a submission that has
// already been decided. Approved and denied are terminal states.
var ErrInvalidState = errors.New("submission has already been decided")

// Service runs the moderation state machine on top of a Store.
type Service struct {
	store db.Store
}

// NewService returns a moderation Service backed by the given store.
func NewService(store db.Store) *Service {
	return &Service{store: store}
}

// Submit validates a candidate site and queues it as a pending submission.
// One pending submission is allowed per source IP at a time; the limit lifts
// as soon as that submission is approved or denied.
func (s *Service) Submit(sourceIP, domain, name, siteURL string) (*model.Submission, error) {
	domain = strings.TrimSpace(domain)
	name = strings.TrimSpace(name)
	siteURL = strings.TrimSpace(siteURL)

	if domain == "" {
		return nil, fmt.Errorf("%w: domain is required", ErrValidation)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !isValidSiteURL(siteURL) {
		return nil, fmt.Errorf("%w: url must be absolute http(s)", ErrValidation)
	}

	has, err := s.store.HasPendingSubmission(sourceIP)
	if err != nil {
		return nil, err
	}
	if has {
		return nil, ErrDuplicatePending
	}

	id, err := s.store.InsertSubmission(sourceIP, domain, name, siteURL)
	if err != nil {
		// Two racing submits from the same IP can both pass the pending
		// check; the unique index catches the loser.
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrDuplicatePending
		}
		return nil, err
	}
	return &model.Submission{ID: id, IP: sourceIP, Domain: domain, Name: name, URL: siteURL, Status: model.StatusPending}, nil
}

// Approve transitions a pending submission to approved and adds its site to
// the end of the ring. The transition and the site insert are a single atomic
// unit: concurrent approvals of the same submission create exactly one site,
// with the loser observing ErrInvalidState.
func (s *Service) Approve(id int) (*model.Site, error) {
	site, err := s.store.ApproveSubmission(id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return site, nil
}

// Deny transitions a pending submission to denied. No ring effect.
func (s *Service) Deny(id int) error {
	if err := s.store.DenySubmission(id); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// ListPending returns the moderation queue, most recent first.
func (s *Service) ListPending() ([]model.Submission, error) {
	return s.store.ListPendingSubmissions()
}

// Get returns a single submission by id.
func (s *Service) Get(id int) (*model.Submission, error) {
	sub, err := s.store.GetSubmission(id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	return sub, nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, db.ErrNotPending):
		return ErrInvalidState
	case errors.Is(err, db.ErrDuplicate):
		// The approved domain is already a ring member.
		return ErrInvalidState
	default:
		return err
	}
}

func isValidSiteURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
