package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/toeirei/ringmaster/internal/model"
	"github.com/uptrace/bun"
)

// SiteModel maps the `sites` table for Bun queries.
type SiteModel struct {
	bun.BaseModel `bun:"table:sites"`
	ID            string    `bun:"id,pk"`
	Name          string    `bun:"name"`
	URL           string    `bun:"url"`
	Position      int       `bun:"position"`
	CreatedAt     time.Time `bun:"created_at,nullzero"`
}

// SubmissionModel maps the `submissions` table.
type SubmissionModel struct {
	bun.BaseModel `bun:"table:submissions"`
	ID            int       `bun:"id,pk,autoincrement"`
	IP            string    `bun:"ip"`
	Domain        string    `bun:"domain"`
	Name          string    `bun:"name"`
	URL           string    `bun:"url"`
	Status        string    `bun:"status"`
	CreatedAt     time.Time `bun:"created_at,nullzero"`
}

// SiteVisitModel maps the `site_visits` counter table.
type SiteVisitModel struct {
	bun.BaseModel `bun:"table:site_visits"`
	SiteID        string `bun:"site_id,pk"`
	Total         int    `bun:"total"`
}

// SiteReferralModel maps the `site_referrals` counter table.
type SiteReferralModel struct {
	bun.BaseModel `bun:"table:site_referrals"`
	SiteID        string `bun:"site_id,pk"`
	ReferrerID    string `bun:"referrer_id,pk"`
	Count         int    `bun:"count"`
}

// --- Mapping helpers (centralized conversions) ---

func siteModelToModel(sm SiteModel) model.Site {
	return model.Site{ID: sm.ID, Name: sm.Name, URL: sm.URL, Position: sm.Position, CreatedAt: sm.CreatedAt}
}

func submissionModelToModel(sm SubmissionModel) model.Submission {
	return model.Submission{ID: sm.ID, IP: sm.IP, Domain: sm.Domain, Name: sm.Name, URL: sm.URL, Status: sm.Status, CreatedAt: sm.CreatedAt}
}

// --- Site helpers ---

// ListSitesBun returns all sites in ring traversal order: position ascending,
// creation time as the tie-break for rows that predate explicit ordering.
func ListSitesBun(bdb *bun.DB) ([]model.Site, error) {
	ctx := context.Background()
	var sm []SiteModel
	if err := bdb.NewSelect().Model(&sm).OrderExpr("position, created_at").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Site, 0, len(sm))
	for _, s := range sm {
		out = append(out, siteModelToModel(s))
	}
	return out, nil
}

// GetSiteBun retrieves a site by its identifier. Returns (nil, nil) when absent.
func GetSiteBun(bdb *bun.DB, id string) (*model.Site, error) {
	ctx := context.Background()
	var sm SiteModel
	err := bdb.NewSelect().Model(&sm).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m := siteModelToModel(sm)
	return &m, nil
}

// InsertSiteBun inserts a new site row.
func InsertSiteBun(bdb *bun.DB, site model.Site) error {
	ctx := context.Background()
	sm := &SiteModel{ID: site.ID, Name: site.Name, URL: site.URL, Position: site.Position, CreatedAt: site.CreatedAt}
	if _, err := bdb.NewInsert().Model(sm).Column("id", "name", "url", "position").Exec(ctx); err != nil {
		return MapDBError(err)
	}
	return nil
}

// NextSitePositionBun returns one past the current maximum order position,
// or 0 for an empty ring.
func NextSitePositionBun(ctx context.Context, exec execRawProvider) (int, error) {
	var max sql.NullInt64
	if err := QueryRawInto(ctx, exec, &max, "SELECT MAX(position) FROM sites"); err != nil {
		return 0, err
	}
	if max.Valid {
		return int(max.Int64) + 1, nil
	}
	return 0, nil
}

// UpdateSiteOrderBun assigns a single site's order position.
func UpdateSiteOrderBun(bdb *bun.DB, id string, position int) error {
	ctx := context.Background()
	_, err := ExecRaw(ctx, bdb, "UPDATE sites SET position = ? WHERE id = ?", position, id)
	return err
}

// ReorderSitesBun reassigns positions 0..n-1 to the given identifiers in
// sequence, inside a single transaction. A site vanishing between the
// caller's membership check and this write aborts the whole reorder.
func ReorderSitesBun(bdb *bun.DB, ids []string) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		for i, id := range ids {
			res, err := ExecRaw(ctx, tx, "UPDATE sites SET position = ? WHERE id = ?", i, id)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("reorder: %w: %s", ErrNotFound, id)
			}
		}
		return nil
	})
}

// DeleteSiteBun removes a site and cascades deletion of its counters, both
// as target and as referrer. Deleting an unknown id is a no-op, which also
// makes this the cleanup pass for counters orphaned by racing increments.
func DeleteSiteBun(bdb *bun.DB, id string) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		if _, err := ExecRaw(ctx, tx, "DELETE FROM site_visits WHERE site_id = ?", id); err != nil {
			return err
		}
		if _, err := ExecRaw(ctx, tx, "DELETE FROM site_referrals WHERE site_id = ? OR referrer_id = ?", id, id); err != nil {
			return err
		}
		if _, err := ExecRaw(ctx, tx, "DELETE FROM sites WHERE id = ?", id); err != nil {
			return err
		}
		return nil
	})
}

// --- Submission helpers ---

// InsertSubmissionBun creates a new pending submission and returns its id.
func InsertSubmissionBun(bdb *bun.DB, ip, domain, name, url string) (int, error) {
	ctx := context.Background()
	sm := &SubmissionModel{IP: ip, Domain: domain, Name: name, URL: url, Status: model.StatusPending}
	if _, err := bdb.NewInsert().Model(sm).Column("ip", "domain", "name", "url", "status").Returning("id").Exec(ctx); err != nil {
		return 0, MapDBError(err)
	}
	return sm.ID, nil
}

// GetSubmissionBun retrieves a submission by id. Returns (nil, nil) when absent.
func GetSubmissionBun(bdb *bun.DB, id int) (*model.Submission, error) {
	ctx := context.Background()
	var sm SubmissionModel
	err := bdb.NewSelect().Model(&sm).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m := submissionModelToModel(sm)
	return &m, nil
}

// HasPendingSubmissionBun reports whether a pending submission exists for ip.
func HasPendingSubmissionBun(bdb *bun.DB, ip string) (bool, error) {
	ctx := context.Background()
	var count int
	if err := QueryRawInto(ctx, bdb, &count, "SELECT COUNT(id) FROM submissions WHERE ip = ? AND status = ?", ip, model.StatusPending); err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListPendingSubmissionsBun returns pending submissions, most recent first.
func ListPendingSubmissionsBun(bdb *bun.DB) ([]model.Submission, error) {
	ctx := context.Background()
	var sm []SubmissionModel
	if err := bdb.NewSelect().Model(&sm).Where("status = ?", model.StatusPending).OrderExpr("created_at DESC, id DESC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Submission, 0, len(sm))
	for _, s := range sm {
		out = append(out, submissionModelToModel(s))
	}
	return out, nil
}

// ApproveSubmissionBun promotes a pending submission into the ring within a
// single transaction. The status transition is conditional on the row still
// being pending, so concurrent approvals of the same submission create
// exactly one site; the loser observes ErrNotPending.
func ApproveSubmissionBun(bdb *bun.DB, id int) (*model.Site, error) {
	ctx := context.Background()
	var site *model.Site
	err := WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		var sm SubmissionModel
		err := tx.NewSelect().Model(&sm).Where("id = ?", id).Limit(1).Scan(ctx)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			return err
		}

		res, err := ExecRaw(ctx, tx, "UPDATE submissions SET status = ? WHERE id = ? AND status = ?", model.StatusApproved, id, model.StatusPending)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotPending
		}

		position, err := NextSitePositionBun(ctx, tx)
		if err != nil {
			return err
		}
		if _, err := ExecRaw(ctx, tx, "INSERT INTO sites (id, name, url, position) VALUES (?, ?, ?, ?)", sm.Domain, sm.Name, sm.URL, position); err != nil {
			return MapDBError(err)
		}
		site = &model.Site{ID: sm.Domain, Name: sm.Name, URL: sm.URL, Position: position}
		return nil
	})
	return site, err
}

// DenySubmissionBun marks a pending submission denied, with the same
// conditional-transition semantics as approval but no ring effect.
func DenySubmissionBun(bdb *bun.DB, id int) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		var exists int
		if err := QueryRawInto(ctx, tx, &exists, "SELECT COUNT(id) FROM submissions WHERE id = ?", id); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		res, err := ExecRaw(ctx, tx, "UPDATE submissions SET status = ? WHERE id = ? AND status = ?", model.StatusDenied, id, model.StatusPending)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrNotPending
		}
		return nil
	})
}

// --- Counter helpers ---

// IncrementVisitBun bumps a site's visit counter by one as an atomic
// upsert-increment, creating the counter at 1 when absent. Valid for
// SQLite and Postgres; MySQL uses its own ON DUPLICATE KEY form.
func IncrementVisitBun(bdb *bun.DB, siteID string) error {
	ctx := context.Background()
	_, err := ExecRaw(ctx, bdb,
		"INSERT INTO site_visits (site_id, total) VALUES (?, 1) ON CONFLICT (site_id) DO UPDATE SET total = site_visits.total + 1",
		siteID)
	return err
}

// IncrementReferralBun bumps the (target, referrer) referral counter by one.
func IncrementReferralBun(bdb *bun.DB, siteID, referrerID string) error {
	ctx := context.Background()
	_, err := ExecRaw(ctx, bdb,
		"INSERT INTO site_referrals (site_id, referrer_id, count) VALUES (?, ?, 1) ON CONFLICT (site_id, referrer_id) DO UPDATE SET count = site_referrals.count + 1",
		siteID, referrerID)
	return err
}

// GetVisitTotalBun returns a site's total visits; a missing counter reads as 0.
func GetVisitTotalBun(bdb *bun.DB, siteID string) (int, error) {
	ctx := context.Background()
	var vm SiteVisitModel
	err := bdb.NewSelect().Model(&vm).Where("site_id = ?", siteID).Limit(1).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return vm.Total, nil
}

// GetReferralsBun returns a site's referral tallies, busiest referrer first.
func GetReferralsBun(bdb *bun.DB, siteID string) ([]model.ReferralCount, error) {
	ctx := context.Background()
	var rm []SiteReferralModel
	if err := bdb.NewSelect().Model(&rm).Where("site_id = ?", siteID).OrderExpr("? DESC", bun.Ident("count")).Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.ReferralCount, 0, len(rm))
	for _, r := range rm {
		out = append(out, model.ReferralCount{ReferrerID: r.ReferrerID, Count: r.Count})
	}
	return out, nil
}

// --- Backup helpers ---

// ExportDataForBackupBun exports all tables' data into a model.BackupData
// using a Bun transaction for a consistent snapshot.
func ExportDataForBackupBun(bdb *bun.DB) (*model.BackupData, error) {
	ctx := context.Background()
	var backup *model.BackupData
	err := WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		backup = &model.BackupData{SchemaVersion: 1}

		var sites []SiteModel
		if err := tx.NewSelect().Model(&sites).OrderExpr("position, created_at").Scan(ctx); err != nil {
			return err
		}
		for _, s := range sites {
			backup.Sites = append(backup.Sites, siteModelToModel(s))
		}

		var subs []SubmissionModel
		if err := tx.NewSelect().Model(&subs).OrderExpr("id").Scan(ctx); err != nil {
			return err
		}
		for _, s := range subs {
			backup.Submissions = append(backup.Submissions, submissionModelToModel(s))
		}

		var visits []SiteVisitModel
		if err := tx.NewSelect().Model(&visits).Scan(ctx); err != nil {
			return err
		}
		for _, v := range visits {
			backup.Visits = append(backup.Visits, model.VisitCounter{SiteID: v.SiteID, Total: v.Total})
		}

		var refs []SiteReferralModel
		if err := tx.NewSelect().Model(&refs).Scan(ctx); err != nil {
			return err
		}
		for _, r := range refs {
			backup.Referrals = append(backup.Referrals, model.ReferralCounter{SiteID: r.SiteID, ReferrerID: r.ReferrerID, Count: r.Count})
		}

		return nil
	})
	return backup, err
}

// ImportDataFromBackupBun performs a full wipe-and-replace using a Bun transaction.
func ImportDataFromBackupBun(bdb *bun.DB, backup *model.BackupData) error {
	ctx := context.Background()
	return WithTx(ctx, bdb, func(ctx context.Context, tx bun.Tx) error {
		tables := []string{"site_referrals", "site_visits", "submissions", "sites"}
		for _, t := range tables {
			if _, err := ExecRaw(ctx, tx, fmt.Sprintf("DELETE FROM %s", t)); err != nil {
				return err
			}
		}

		for _, s := range backup.Sites {
			if _, err := ExecRaw(ctx, tx, "INSERT INTO sites (id, name, url, position, created_at) VALUES (?, ?, ?, ?, ?)", s.ID, s.Name, s.URL, s.Position, s.CreatedAt); err != nil {
				return MapDBError(err)
			}
		}
		for _, s := range backup.Submissions {
			if _, err := ExecRaw(ctx, tx, "INSERT INTO submissions (id, ip, domain, name, url, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)", s.ID, s.IP, s.Domain, s.Name, s.URL, s.Status, s.CreatedAt); err != nil {
				return MapDBError(err)
			}
		}
		for _, v := range backup.Visits {
			if _, err := ExecRaw(ctx, tx, "INSERT INTO site_visits (site_id, total) VALUES (?, ?)", v.SiteID, v.Total); err != nil {
				return MapDBError(err)
			}
		}
		for _, r := range backup.Referrals {
			if _, err := ExecRaw(ctx, tx, "INSERT INTO site_referrals (site_id, referrer_id, count) VALUES (?, ?, ?)", r.SiteID, r.ReferrerID, r.Count); err != nil {
				return MapDBError(err)
			}
		}
		return nil
	})
}
