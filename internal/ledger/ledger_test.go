package ledger_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/wes/paca/internal/config"
	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/ledger"
	"github.com/wes/paca/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func setup(t *testing.T) (*database.SQLDB, *ledger.Ledger, *fakeClock) {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		DatabaseURL:    filepath.Join(t.TempDir(), "ledger.db"),
		DatabaseDriver: "sqlite3",
	}
	db, err := database.NewDB(cfg, log)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	clock := &fakeClock{t: time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)}
	return db, ledger.New(db, ledger.WithNow(clock.Now), ledger.WithLogger(log)), clock
}

func createProject(t *testing.T, db database.DB, name string) *models.Project {
	t.Helper()
	p, err := db.CreateProject(context.Background(), database.ProjectDetails{Name: name, Color: "#3b82f6"})
	if err != nil {
		t.Fatalf("CreateProject(%s): %v", name, err)
	}
	return p
}

func TestStartFromIdle(t *testing.T) {
	ctx := context.Background()
	db, l, clock := setup(t)
	p := createProject(t, db, "alpha")

	entry, err := l.Start(ctx, p.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !entry.Running() {
		t.Errorf("started entry has end time %v", entry.EndTime)
	}
	if !entry.StartTime.Equal(clock.Now()) {
		t.Errorf("StartTime = %v, want %v", entry.StartTime, clock.Now())
	}

	running, err := l.Running(ctx)
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if running == nil || running.ID != entry.ID {
		t.Fatalf("Running = %+v, want entry %s", running, entry.ID)
	}
	if running.ProjectName != "alpha" {
		t.Errorf("ProjectName = %q, want alpha", running.ProjectName)
	}
}

func TestStartWhileRunningAutoStops(t *testing.T) {
	ctx := context.Background()
	db, l, clock := setup(t)
	alpha := createProject(t, db, "alpha")
	beta := createProject(t, db, "beta")

	first, err := l.Start(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("Start alpha: %v", err)
	}
	clock.Advance(45 * time.Minute)

	second, err := l.Start(ctx, beta.ID)
	if err != nil {
		t.Fatalf("Start beta: %v", err)
	}

	stopped, err := db.GetTimeEntry(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetTimeEntry: %v", err)
	}
	if stopped.EndTime == nil || !stopped.EndTime.Equal(second.StartTime) {
		t.Errorf("auto-stopped end = %v, want %v", stopped.EndTime, second.StartTime)
	}
	if stopped.Description == nil || *stopped.Description != ledger.AutoStopDescription {
		t.Errorf("auto-stopped description = %v, want %q", stopped.Description, ledger.AutoStopDescription)
	}
	if stopped.Duration() != 45*time.Minute {
		t.Errorf("auto-stopped duration = %v, want 45m", stopped.Duration())
	}

	n, err := db.CountRunningTimeEntries(ctx)
	if err != nil {
		t.Fatalf("CountRunningTimeEntries: %v", err)
	}
	if n != 1 {
		t.Errorf("running entries = %d, want 1", n)
	}
}

func TestStartSameProjectTwice(t *testing.T) {
	ctx := context.Background()
	db, l, clock := setup(t)
	p := createProject(t, db, "alpha")

	first, err := l.Start(ctx, p.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	clock.Advance(time.Minute)
	second, err := l.Start(ctx, p.ID)
	if err != nil {
		t.Fatalf("Start again: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("restarting should open a new entry")
	}

	entries, err := db.ListTimeEntries(ctx, database.TimeEntryQuery{ProjectID: p.ID})
	if err != nil {
		t.Fatalf("ListTimeEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2", len(entries))
	}
}

func TestStop(t *testing.T) {
	ctx := context.Background()
	db, l, clock := setup(t)
	p := createProject(t, db, "alpha")

	if _, err := l.Stop(ctx, "nope", nil); !errors.Is(err, ledger.ErrNotRunning) {
		t.Errorf("Stop while idle error = %v, want ErrNotRunning", err)
	}

	entry, err := l.Start(ctx, p.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := l.Stop(ctx, "some-other-id", nil); !errors.Is(err, ledger.ErrEntryMismatch) {
		t.Errorf("Stop mismatched id error = %v, want ErrEntryMismatch", err)
	}

	clock.Advance(90 * time.Minute)
	desc := "wrote the report"
	stopped, err := l.Stop(ctx, entry.ID, &desc)
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if stopped.Running() {
		t.Fatal("stopped entry is still running")
	}
	if stopped.Duration() != 90*time.Minute {
		t.Errorf("Duration = %v, want 1h30m", stopped.Duration())
	}
	if stopped.Description == nil || *stopped.Description != desc {
		t.Errorf("Description = %v, want %q", stopped.Description, desc)
	}

	running, err := l.Running(ctx)
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if running != nil {
		t.Errorf("Running after stop = %+v, want nil", running)
	}
	if _, err := l.Stop(ctx, entry.ID, nil); !errors.Is(err, ledger.ErrNotRunning) {
		t.Errorf("second Stop error = %v, want ErrNotRunning", err)
	}
}

func TestStartUnknownProjectLeavesRunningTimer(t *testing.T) {
	ctx := context.Background()
	db, l, _ := setup(t)
	p := createProject(t, db, "alpha")

	entry, err := l.Start(ctx, p.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := l.Start(ctx, "missing-project"); err == nil {
		t.Fatal("Start on unknown project should fail")
	}

	running, err := l.Running(ctx)
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if running == nil || running.ID != entry.ID {
		t.Errorf("failed start should roll back the auto-stop; running = %+v", running)
	}
}
