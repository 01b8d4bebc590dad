package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	reperrors "sizereport/internal/errors"
	"sizereport/internal/logging"
)

func openTestRepo(t *testing.T) (*ReportRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".sizereport", "reports.db")
	db, err := Open(path, logging.NewDiscardLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewReportRepository(db)
	if err != nil {
		t.Fatalf("NewReportRepository() error = %v", err)
	}
	t.Cleanup(repo.Close)
	return repo, path
}

func TestSaveAndGet(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()
	body := []byte(`{"sizeSummary":{"totalSize":"1.00KiB"}}`)

	run := &ReportRun{Title: "first", TotalSize: 1024, Violations: 1, Body: body}
	if err := repo.Save(ctx, run); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if run.ID == "" || run.CreatedAt.IsZero() {
		t.Fatalf("Save() did not assign id/timestamp: %+v", run)
	}

	got, err := repo.Get(ctx, run.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got.Body) != string(body) {
		t.Errorf("Body = %s, want %s", got.Body, body)
	}
	if got.Title != "first" || got.TotalSize != 1024 || got.Violations != 1 {
		t.Errorf("Get() = %+v", got)
	}

	_, err = repo.Get(ctx, "nope")
	if !reperrors.Is(err, reperrors.ReportNotFound) {
		t.Errorf("Get(missing) error = %v, want REPORT_NOT_FOUND", err)
	}
}

func TestListAndLatest(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Latest(ctx); !reperrors.Is(err, reperrors.ReportNotFound) {
		t.Errorf("Latest() on empty store error = %v", err)
	}

	base := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"a", "b", "c"} {
		run := &ReportRun{Title: title, CreatedAt: base.Add(time.Duration(i) * time.Minute), Body: []byte(`{}`)}
		if err := repo.Save(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 3 || runs[0].Title != "c" || runs[2].Title != "a" {
		t.Errorf("List() order = %v", titles(runs))
	}
	if runs[0].Body != nil {
		t.Error("List() should not load bodies")
	}

	limited, err := repo.List(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Errorf("List(2) = %v, %v", titles(limited), err)
	}

	latest, err := repo.Latest(ctx)
	if err != nil || latest.Title != "c" {
		t.Errorf("Latest() = %+v, %v", latest, err)
	}
}

func TestDelete(t *testing.T) {
	repo, _ := openTestRepo(t)
	ctx := context.Background()
	run := &ReportRun{Title: "x", Body: []byte(`{}`)}
	if err := repo.Save(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, run.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, run.ID); !reperrors.Is(err, reperrors.ReportNotFound) {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestReopenKeepsReports(t *testing.T) {
	repo, path := openTestRepo(t)
	ctx := context.Background()
	if err := repo.Save(ctx, &ReportRun{Title: "kept", Body: []byte(`{}`)}); err != nil {
		t.Fatal(err)
	}

	db, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = db.Close() }()
	version, err := db.getSchemaVersion()
	if err != nil || version != currentSchemaVersion {
		t.Errorf("schema version = %d, %v", version, err)
	}

	again, err := NewReportRepository(db)
	if err != nil {
		t.Fatal(err)
	}
	defer again.Close()
	runs, err := again.List(ctx, 0)
	if err != nil || len(runs) != 1 {
		t.Errorf("List() after reopen = %v, %v", titles(runs), err)
	}
}

func titles(runs []*ReportRun) []string {
	var out []string
	for _, r := range runs {
		out = append(out, r.Title)
	}
	return out
}
