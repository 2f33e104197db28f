// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for Ringmaster.
// This file contains the SQLite implementation of the database store.
package db // import "github.com/toeirei/ringmaster/internal/db"

import (
	"context"
	"fmt"

	"github.com/toeirei/ringmaster/internal/model"
	"github.com/uptrace/bun"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SqliteStore is the SQLite implementation of the Store interface.
type SqliteStore struct {
	bun *bun.DB
}

// NewSqliteStore returns the current package-level store if it is SQLite-backed.
// The actual initialization happens in InitDB; this is kept for potential
// future logic specific to the store's creation.
func NewSqliteStore(dataSourceName string) (*SqliteStore, error) {
	s, ok := store.(*SqliteStore)
	if !ok {
		return nil, fmt.Errorf("internal error: store is not a *SqliteStore")
	}
	return s, nil
}

// ListSites retrieves all ring members in traversal order.
func (s *SqliteStore) ListSites() ([]model.Site, error) {
	return ListSitesBun(s.bun)
}

// GetSite retrieves a single ring member by its identifier.
func (s *SqliteStore) GetSite(id string) (*model.Site, error) {
	return GetSiteBun(s.bun, id)
}

// InsertSite adds a new ring member.
func (s *SqliteStore) InsertSite(site model.Site) error {
	return InsertSiteBun(s.bun, site)
}

// NextSitePosition returns the order position a newly approved site should take.
func (s *SqliteStore) NextSitePosition() (int, error) {
	return NextSitePositionBun(context.Background(), s.bun)
}

// UpdateSiteOrder sets a single site's position in the ring.
func (s *SqliteStore) UpdateSiteOrder(id string, position int) error {
	return UpdateSiteOrderBun(s.bun, id, position)
}

// ReorderSites atomically reassigns ring positions to match the given id sequence.
func (s *SqliteStore) ReorderSites(ids []string) error {
	return ReorderSitesBun(s.bun, ids)
}

// DeleteSite removes a ring member and its analytics counters.
func (s *SqliteStore) DeleteSite(id string) error {
	return DeleteSiteBun(s.bun, id)
}

// InsertSubmission creates a new pending submission and returns its id.
func (s *SqliteStore) InsertSubmission(ip, domain, name, url string) (int, error) {
	return InsertSubmissionBun(s.bun, ip, domain, name, url)
}

// GetSubmission retrieves a submission by id.
func (s *SqliteStore) GetSubmission(id int) (*model.Submission, error) {
	return GetSubmissionBun(s.bun, id)
}

// HasPendingSubmission reports whether the given IP already has a pending submission.
func (s *SqliteStore) HasPendingSubmission(ip string) (bool, error) {
	return HasPendingSubmissionBun(s.bun, ip)
}

// ListPendingSubmissions retrieves the moderation queue, most recent first.
func (s *SqliteStore) ListPendingSubmissions() ([]model.Submission, error) {
	return ListPendingSubmissionsBun(s.bun)
}

// ApproveSubmission promotes a pending submission into the ring.
func (s *SqliteStore) ApproveSubmission(id int) (*model.Site, error) {
	return ApproveSubmissionBun(s.bun, id)
}

// DenySubmission marks a pending submission as denied.
func (s *SqliteStore) DenySubmission(id int) error {
	return DenySubmissionBun(s.bun, id)
}

// IncrementVisit bumps a site's visit counter.
func (s *SqliteStore) IncrementVisit(siteID string) error {
	return IncrementVisitBun(s.bun, siteID)
}

// IncrementReferral bumps the referral counter for traffic sent from
// referrerID to siteID.
func (s *SqliteStore) IncrementReferral(siteID, referrerID string) error {
	return IncrementReferralBun(s.bun, siteID, referrerID)
}

// GetVisitTotal retrieves a site's total visit count.
func (s *SqliteStore) GetVisitTotal(siteID string) (int, error) {
	return GetVisitTotalBun(s.bun, siteID)
}

// GetReferrals retrieves a site's referral tallies, busiest referrer first.
func (s *SqliteStore) GetReferrals(siteID string) ([]model.ReferralCount, error) {
	return GetReferralsBun(s.bun, siteID)
}

// ExportDataForBackup retrieves all data from the database for a backup.
// It uses a transaction to ensure a consistent snapshot of the data.
func (s *SqliteStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportDataForBackupBun(s.bun)
}

// ImportDataFromBackup restores the database from a backup data structure.
// It performs a full wipe-and-replace within a single transaction to ensure atomicity.
func (s *SqliteStore) ImportDataFromBackup(backup *model.BackupData) error {
	return ImportDataFromBackupBun(s.bun, backup)
}
