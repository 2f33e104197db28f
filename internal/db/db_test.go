package db

import (
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/toeirei/ringmaster/internal/model"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) string {
	t.Helper()
	dsn := "file:test_" + t.Name() + "?mode=memory&cache=shared"
	if err := InitDB("sqlite", dsn); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return dsn
}

func mustInsertSite(t *testing.T, id, name, url string, position int) {
	t.Helper()
	if err := InsertSite(model.Site{ID: id, Name: name, URL: url, Position: position}); err != nil {
		t.Fatalf("InsertSite(%s) failed: %v", id, err)
	}
}

func TestInitDB_Migrations_Applied(t *testing.T) {
	dsn := newTestDB(t)

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open sql.DB for inspection: %v", err)
	}
	defer func() { _ = sqlDB.Close() }()

	for _, table := range []string{"sites", "submissions", "site_visits", "site_referrals", "schema_migrations"} {
		var name string
		err := sqlDB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Fatalf("expected table %s to exist after migrations: %v", table, err)
		}
	}
}

func TestSites_InsertListOrder(t *testing.T) {
	_ = newTestDB(t)

	mustInsertSite(t, "b.example.com", "Bravo", "https://b.example.com/", 1)
	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)
	mustInsertSite(t, "c.example.com", "Charlie", "https://c.example.com/", 2)

	sites, err := ListSites()
	if err != nil {
		t.Fatalf("ListSites failed: %v", err)
	}
	if len(sites) != 3 {
		t.Fatalf("expected 3 sites, got %d", len(sites))
	}
	want := []string{"a.example.com", "b.example.com", "c.example.com"}
	for i, id := range want {
		if sites[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, sites[i].ID)
		}
	}
}

func TestSites_InsertDuplicate(t *testing.T) {
	_ = newTestDB(t)

	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)
	err := InsertSite(model.Site{ID: "a.example.com", Name: "Alpha2", URL: "https://a.example.com/", Position: 1})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on duplicate InsertSite, got: %v", err)
	}
}

func TestGetSite_MissingReturnsNilNil(t *testing.T) {
	_ = newTestDB(t)

	site, err := GetSite("nope.example.com")
	if err != nil {
		t.Fatalf("GetSite failed: %v", err)
	}
	if site != nil {
		t.Fatalf("expected nil site for missing id, got %v", site)
	}
}

func TestNextSitePosition(t *testing.T) {
	_ = newTestDB(t)

	pos, err := NextSitePosition()
	if err != nil {
		t.Fatalf("NextSitePosition failed: %v", err)
	}
	if pos != 0 {
		t.Fatalf("expected position 0 for empty ring, got %d", pos)
	}

	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)
	mustInsertSite(t, "b.example.com", "Bravo", "https://b.example.com/", 4)

	pos, err = NextSitePosition()
	if err != nil {
		t.Fatalf("NextSitePosition failed: %v", err)
	}
	if pos != 5 {
		t.Fatalf("expected position 5 after max position 4, got %d", pos)
	}
}

func TestReorderSites(t *testing.T) {
	_ = newTestDB(t)

	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)
	mustInsertSite(t, "b.example.com", "Bravo", "https://b.example.com/", 1)
	mustInsertSite(t, "c.example.com", "Charlie", "https://c.example.com/", 2)

	if err := ReorderSites([]string{"c.example.com", "a.example.com", "b.example.com"}); err != nil {
		t.Fatalf("ReorderSites failed: %v", err)
	}

	sites, err := ListSites()
	if err != nil {
		t.Fatalf("ListSites failed: %v", err)
	}
	want := []string{"c.example.com", "a.example.com", "b.example.com"}
	for i, id := range want {
		if sites[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, sites[i].ID)
		}
	}
}

func TestReorderSites_UnknownIDRollsBack(t *testing.T) {
	_ = newTestDB(t)

	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)
	mustInsertSite(t, "b.example.com", "Bravo", "https://b.example.com/", 1)

	err := ReorderSites([]string{"b.example.com", "ghost.example.com"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id in reorder, got: %v", err)
	}

	// The failed reorder must not have moved anything.
	sites, err := ListSites()
	if err != nil {
		t.Fatalf("ListSites failed: %v", err)
	}
	if sites[0].ID != "a.example.com" || sites[1].ID != "b.example.com" {
		t.Fatalf("expected original order after failed reorder, got %v", sites)
	}
}

func TestDeleteSite_RemovesCounters(t *testing.T) {
	_ = newTestDB(t)

	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)
	mustInsertSite(t, "b.example.com", "Bravo", "https://b.example.com/", 1)

	if err := IncrementVisit("a.example.com"); err != nil {
		t.Fatalf("IncrementVisit failed: %v", err)
	}
	if err := IncrementReferral("b.example.com", "a.example.com"); err != nil {
		t.Fatalf("IncrementReferral failed: %v", err)
	}

	if err := DeleteSite("a.example.com"); err != nil {
		t.Fatalf("DeleteSite failed: %v", err)
	}

	// Visit counter for the deleted site is gone.
	total, err := GetVisitTotal("a.example.com")
	if err != nil {
		t.Fatalf("GetVisitTotal failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0 visits after delete, got %d", total)
	}

	// Referral rows naming the deleted site as referrer are gone too.
	refs, err := GetReferrals("b.example.com")
	if err != nil {
		t.Fatalf("GetReferrals failed: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("expected no referrals mentioning deleted site, got %v", refs)
	}

	// Deleting again is a no-op.
	if err := DeleteSite("a.example.com"); err != nil {
		t.Fatalf("expected repeat DeleteSite to be a no-op, got: %v", err)
	}
}

func TestSubmissions_PendingPerIP(t *testing.T) {
	_ = newTestDB(t)

	id, err := InsertSubmission("203.0.113.7", "new.example.com", "Newcomer", "https://new.example.com/")
	if err != nil {
		t.Fatalf("InsertSubmission failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive submission id, got %d", id)
	}

	has, err := HasPendingSubmission("203.0.113.7")
	if err != nil {
		t.Fatalf("HasPendingSubmission failed: %v", err)
	}
	if !has {
		t.Fatalf("expected pending submission for ip")
	}

	// Second pending submission from the same IP hits the partial unique index.
	_, err = InsertSubmission("203.0.113.7", "other.example.com", "Other", "https://other.example.com/")
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for second pending submission, got: %v", err)
	}

	// A different IP is unaffected.
	if _, err := InsertSubmission("203.0.113.8", "other.example.com", "Other", "https://other.example.com/"); err != nil {
		t.Fatalf("expected submission from second ip to succeed, got: %v", err)
	}
}

func TestSubmissions_DenyFreesIP(t *testing.T) {
	_ = newTestDB(t)

	id, err := InsertSubmission("203.0.113.7", "new.example.com", "Newcomer", "https://new.example.com/")
	if err != nil {
		t.Fatalf("InsertSubmission failed: %v", err)
	}
	if err := DenySubmission(id); err != nil {
		t.Fatalf("DenySubmission failed: %v", err)
	}

	// Once the submission leaves pending, the IP may submit again.
	if _, err := InsertSubmission("203.0.113.7", "retry.example.com", "Retry", "https://retry.example.com/"); err != nil {
		t.Fatalf("expected resubmission after deny to succeed, got: %v", err)
	}
}

func TestApproveSubmission(t *testing.T) {
	_ = newTestDB(t)

	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)

	id, err := InsertSubmission("203.0.113.7", "new.example.com", "Newcomer", "https://new.example.com/")
	if err != nil {
		t.Fatalf("InsertSubmission failed: %v", err)
	}

	site, err := ApproveSubmission(id)
	if err != nil {
		t.Fatalf("ApproveSubmission failed: %v", err)
	}
	if site.ID != "new.example.com" {
		t.Errorf("expected site id new.example.com, got %s", site.ID)
	}
	if site.Position != 1 {
		t.Errorf("expected approved site at position 1, got %d", site.Position)
	}

	sub, err := GetSubmission(id)
	if err != nil {
		t.Fatalf("GetSubmission failed: %v", err)
	}
	if sub.Status != model.StatusApproved {
		t.Errorf("expected status approved, got %s", sub.Status)
	}

	// Re-approving the same submission fails; it already left pending.
	if _, err := ApproveSubmission(id); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending on second approve, got: %v", err)
	}
}

func TestApproveSubmission_NotFound(t *testing.T) {
	_ = newTestDB(t)

	if _, err := ApproveSubmission(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing submission, got: %v", err)
	}
	if err := DenySubmission(9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing submission, got: %v", err)
	}
}

func TestDenySubmission_AlreadyDenied(t *testing.T) {
	_ = newTestDB(t)

	id, err := InsertSubmission("203.0.113.7", "new.example.com", "Newcomer", "https://new.example.com/")
	if err != nil {
		t.Fatalf("InsertSubmission failed: %v", err)
	}
	if err := DenySubmission(id); err != nil {
		t.Fatalf("DenySubmission failed: %v", err)
	}
	if err := DenySubmission(id); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending on second deny, got: %v", err)
	}
}

func TestListPendingSubmissions_OnlyPending(t *testing.T) {
	_ = newTestDB(t)

	id1, err := InsertSubmission("203.0.113.1", "one.example.com", "One", "https://one.example.com/")
	if err != nil {
		t.Fatalf("InsertSubmission failed: %v", err)
	}
	if _, err := InsertSubmission("203.0.113.2", "two.example.com", "Two", "https://two.example.com/"); err != nil {
		t.Fatalf("InsertSubmission failed: %v", err)
	}
	if err := DenySubmission(id1); err != nil {
		t.Fatalf("DenySubmission failed: %v", err)
	}

	pending, err := ListPendingSubmissions()
	if err != nil {
		t.Fatalf("ListPendingSubmissions failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending submission, got %d", len(pending))
	}
	if pending[0].Domain != "two.example.com" {
		t.Errorf("expected two.example.com pending, got %s", pending[0].Domain)
	}
}

func TestCounters_UpsertIncrement(t *testing.T) {
	_ = newTestDB(t)

	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)
	mustInsertSite(t, "b.example.com", "Bravo", "https://b.example.com/", 1)

	// Missing counter reads as zero.
	total, err := GetVisitTotal("a.example.com")
	if err != nil {
		t.Fatalf("GetVisitTotal failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0 visits before any increment, got %d", total)
	}

	for i := 0; i < 3; i++ {
		if err := IncrementVisit("a.example.com"); err != nil {
			t.Fatalf("IncrementVisit failed: %v", err)
		}
	}
	total, err = GetVisitTotal("a.example.com")
	if err != nil {
		t.Fatalf("GetVisitTotal failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 visits, got %d", total)
	}

	if err := IncrementReferral("a.example.com", "b.example.com"); err != nil {
		t.Fatalf("IncrementReferral failed: %v", err)
	}
	if err := IncrementReferral("a.example.com", "b.example.com"); err != nil {
		t.Fatalf("IncrementReferral failed: %v", err)
	}
	refs, err := GetReferrals("a.example.com")
	if err != nil {
		t.Fatalf("GetReferrals failed: %v", err)
	}
	if len(refs) != 1 || refs[0].ReferrerID != "b.example.com" || refs[0].Count != 2 {
		t.Fatalf("expected single referral b.example.com=2, got %v", refs)
	}
}

func TestCounters_ConcurrentIncrements(t *testing.T) {
	_ = newTestDB(t)

	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)

	const workers = 8
	const perWorker = 5
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if err := IncrementVisit("a.example.com"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent IncrementVisit failed: %v", err)
	}

	total, err := GetVisitTotal("a.example.com")
	if err != nil {
		t.Fatalf("GetVisitTotal failed: %v", err)
	}
	if total != workers*perWorker {
		t.Fatalf("expected %d visits, got %d", workers*perWorker, total)
	}
}

func TestBackup_ExportImportRoundTrip(t *testing.T) {
	_ = newTestDB(t)

	mustInsertSite(t, "a.example.com", "Alpha", "https://a.example.com/", 0)
	mustInsertSite(t, "b.example.com", "Bravo", "https://b.example.com/", 1)
	if _, err := InsertSubmission("203.0.113.7", "new.example.com", "Newcomer", "https://new.example.com/"); err != nil {
		t.Fatalf("InsertSubmission failed: %v", err)
	}
	if err := IncrementVisit("a.example.com"); err != nil {
		t.Fatalf("IncrementVisit failed: %v", err)
	}
	if err := IncrementReferral("a.example.com", "b.example.com"); err != nil {
		t.Fatalf("IncrementReferral failed: %v", err)
	}

	backup, err := ExportDataForBackup()
	if err != nil {
		t.Fatalf("ExportDataForBackup failed: %v", err)
	}
	if len(backup.Sites) != 2 || len(backup.Submissions) != 1 || len(backup.Visits) != 1 || len(backup.Referrals) != 1 {
		t.Fatalf("unexpected backup shape: %+v", backup)
	}

	// Mutate, then restore, then verify the snapshot won.
	if err := DeleteSite("a.example.com"); err != nil {
		t.Fatalf("DeleteSite failed: %v", err)
	}
	if err := ImportDataFromBackup(backup); err != nil {
		t.Fatalf("ImportDataFromBackup failed: %v", err)
	}

	sites, err := ListSites()
	if err != nil {
		t.Fatalf("ListSites failed: %v", err)
	}
	if len(sites) != 2 || sites[0].ID != "a.example.com" {
		t.Fatalf("expected restored sites, got %v", sites)
	}
	total, err := GetVisitTotal("a.example.com")
	if err != nil {
		t.Fatalf("GetVisitTotal failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected restored visit count 1, got %d", total)
	}
}
