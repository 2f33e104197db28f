// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for Ringmaster.
// This file contains the PostgreSQL implementation of the database store.
package db // import "github.com/toeirei/ringmaster/internal/db"

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/toeirei/ringmaster/internal/model"
	"github.com/uptrace/bun"
)

// PostgresStore is the PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	bun *bun.DB
}

// NewPostgresStore returns the current package-level store if it is
// Postgres-backed. The actual initialization happens in InitDB.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	s, ok := store.(*PostgresStore)
	if !ok {
		return nil, fmt.Errorf("internal error: store is not a *PostgresStore")
	}
	return s, nil
}

// The Bun helpers emit portable SQL for everything Postgres needs, including
// the ON CONFLICT counter upserts, so this store delegates throughout.

func (s *PostgresStore) ListSites() ([]model.Site, error) {
	return ListSitesBun(s.bun)
}

func (s *PostgresStore) GetSite(id string) (*model.Site, error) {
	return GetSiteBun(s.bun, id)
}

func (s *PostgresStore) InsertSite(site model.Site) error {
	return InsertSiteBun(s.bun, site)
}

func (s *PostgresStore) NextSitePosition() (int, error) {
	return NextSitePositionBun(context.Background(), s.bun)
}

func (s *PostgresStore) UpdateSiteOrder(id string, position int) error {
	return UpdateSiteOrderBun(s.bun, id, position)
}

func (s *PostgresStore) ReorderSites(ids []string) error {
	return ReorderSitesBun(s.bun, ids)
}

func (s *PostgresStore) DeleteSite(id string) error {
	return DeleteSiteBun(s.bun, id)
}

func (s *PostgresStore) InsertSubmission(ip, domain, name, url string) (int, error) {
	return InsertSubmissionBun(s.bun, ip, domain, name, url)
}

func (s *PostgresStore) GetSubmission(id int) (*model.Submission, error) {
	return GetSubmissionBun(s.bun, id)
}

func (s *PostgresStore) HasPendingSubmission(ip string) (bool, error) {
	return HasPendingSubmissionBun(s.bun, ip)
}

func (s *PostgresStore) ListPendingSubmissions() ([]model.Submission, error) {
	return ListPendingSubmissionsBun(s.bun)
}

func (s *PostgresStore) ApproveSubmission(id int) (*model.Site, error) {
	return ApproveSubmissionBun(s.bun, id)
}

func (s *PostgresStore) DenySubmission(id int) error {
	return DenySubmissionBun(s.bun, id)
}

func (s *PostgresStore) IncrementVisit(siteID string) error {
	return IncrementVisitBun(s.bun, siteID)
}

func (s *PostgresStore) IncrementReferral(siteID, referrerID string) error {
	return IncrementReferralBun(s.bun, siteID, referrerID)
}

func (s *PostgresStore) GetVisitTotal(siteID string) (int, error) {
	return GetVisitTotalBun(s.bun, siteID)
}

func (s *PostgresStore) GetReferrals(siteID string) ([]model.ReferralCount, error) {
	return GetReferralsBun(s.bun, siteID)
}

func (s *PostgresStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportDataForBackupBun(s.bun)
}

func (s *PostgresStore) ImportDataFromBackup(backup *model.BackupData) error {
	return ImportDataFromBackupBun(s.bun, backup)
}
