// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

// package db provides the data access layer for Ringmaster.
// This file contains the MySQL implementation of the database store.
// Note: This implementation is considered experimental.
package db // import "github.com/toeirei/ringmaster/internal/db"

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/toeirei/ringmaster/internal/model"
	"github.com/uptrace/bun"
)

// MySQLStore is the MySQL implementation of the Store interface.
type MySQLStore struct {
	bun *bun.DB
}

// NewMySQLStore returns the current package-level store if it is MySQL-backed.
// The actual initialization happens in InitDB.
func NewMySQLStore(dataSourceName string) (*MySQLStore, error) {
	s, ok := store.(*MySQLStore)
	if !ok {
		return nil, fmt.Errorf("internal error: store is not a *MySQLStore")
	}
	return s, nil
}

func (s *MySQLStore) ListSites() ([]model.Site, error) {
	return ListSitesBun(s.bun)
}

func (s *MySQLStore) GetSite(id string) (*model.Site, error) {
	return GetSiteBun(s.bun, id)
}

func (s *MySQLStore) InsertSite(site model.Site) error {
	return InsertSiteBun(s.bun, site)
}

func (s *MySQLStore) NextSitePosition() (int, error) {
	return NextSitePositionBun(context.Background(), s.bun)
}

func (s *MySQLStore) UpdateSiteOrder(id string, position int) error {
	return UpdateSiteOrderBun(s.bun, id, position)
}

func (s *MySQLStore) ReorderSites(ids []string) error {
	return ReorderSitesBun(s.bun, ids)
}

func (s *MySQLStore) DeleteSite(id string) error {
	return DeleteSiteBun(s.bun, id)
}

// InsertSubmission creates a new pending submission and returns its id.
// MySQL has no partial unique index, so the per-IP pending constraint is
// enforced with a check inside a transaction rather than by the schema.
func (s *MySQLStore) InsertSubmission(ip, domain, name, url string) (int, error) {
	ctx := context.Background()
	var id int
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		var count int
		if err := QueryRawInto(ctx, tx, &count, "SELECT COUNT(id) FROM submissions WHERE ip = ? AND status = ?", ip, model.StatusPending); err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicate
		}
		sm := &SubmissionModel{IP: ip, Domain: domain, Name: name, URL: url, Status: model.StatusPending}
		if _, err := tx.NewInsert().Model(sm).Column("ip", "domain", "name", "url", "status").Exec(ctx); err != nil {
			return MapDBError(err)
		}
		id = sm.ID
		return nil
	})
	return id, err
}

func (s *MySQLStore) GetSubmission(id int) (*model.Submission, error) {
	return GetSubmissionBun(s.bun, id)
}

func (s *MySQLStore) HasPendingSubmission(ip string) (bool, error) {
	return HasPendingSubmissionBun(s.bun, ip)
}

func (s *MySQLStore) ListPendingSubmissions() ([]model.Submission, error) {
	return ListPendingSubmissionsBun(s.bun)
}

func (s *MySQLStore) ApproveSubmission(id int) (*model.Site, error) {
	return ApproveSubmissionBun(s.bun, id)
}

func (s *MySQLStore) DenySubmission(id int) error {
	return DenySubmissionBun(s.bun, id)
}

// IncrementVisit bumps a site's visit counter. MySQL does not support the
// ON CONFLICT clause, so the upsert uses ON DUPLICATE KEY UPDATE instead.
func (s *MySQLStore) IncrementVisit(siteID string) error {
	ctx := context.Background()
	_, err := ExecRaw(ctx, s.bun,
		"INSERT INTO site_visits (site_id, total) VALUES (?, 1) ON DUPLICATE KEY UPDATE total = total + 1",
		siteID)
	return err
}

// IncrementReferral bumps the (target, referrer) referral counter using the
// MySQL upsert form.
func (s *MySQLStore) IncrementReferral(siteID, referrerID string) error {
	ctx := context.Background()
	_, err := ExecRaw(ctx, s.bun,
		"INSERT INTO site_referrals (site_id, referrer_id, count) VALUES (?, ?, 1) ON DUPLICATE KEY UPDATE count = count + 1",
		siteID, referrerID)
	return err
}

func (s *MySQLStore) GetVisitTotal(siteID string) (int, error) {
	return GetVisitTotalBun(s.bun, siteID)
}

func (s *MySQLStore) GetReferrals(siteID string) ([]model.ReferralCount, error) {
	return GetReferralsBun(s.bun, siteID)
}

func (s *MySQLStore) ExportDataForBackup() (*model.BackupData, error) {
	return ExportDataForBackupBun(s.bun)
}

func (s *MySQLStore) ImportDataFromBackup(backup *model.BackupData) error {
	return ImportDataFromBackupBun(s.bun, backup)
}
