package database_test

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
	"github.com/wes/paca/internal/models"
)

func openTestDB(t *testing.T) *database.SQLDB {
	t.Helper()
	cfg := &config.Config{
		DatabaseURL:    filepath.Join(t.TempDir(), "paca.db"),
		DatabaseDriver: "sqlite3",
	}
	db, err := database.NewDB(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func seedProject(t *testing.T, db database.DB) (*models.Customer, *models.Project) {
	t.Helper()
	ctx := context.Background()
	c, err := db.CreateCustomer(ctx, "acme", "billing@acme.test")
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}
	rate := 50.0
	p, err := db.CreateProject(ctx, database.ProjectDetails{Name: "website", Color: "#3b82f6", HourlyRate: &rate, CustomerID: &c.ID})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return c, p
}

func closedEntry(t *testing.T, db database.DB, projectID string, start time.Time, d time.Duration) *models.TimeEntry {
	t.Helper()
	end := start.Add(d)
	e, err := db.CreateTimeEntry(context.Background(), projectID, start, &end, nil)
	if err != nil {
		t.Fatalf("CreateTimeEntry: %v", err)
	}
	return e
}

func TestNewDBUnknownDriver(t *testing.T) {
	_, err := database.NewDB(&config.Config{DatabaseURL: "x", DatabaseDriver: "postgres"}, nil)
	if !errors.Is(err, database.ErrUnknownDriver) {
		t.Errorf("NewDB error = %v, want ErrUnknownDriver", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := db.Migrate(context.Background()); err != nil {
		t.Errorf("second Migrate: %v", err)
	}
}

func TestProjectCarriesCustomer(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	c, p := seedProject(t, db)

	got, err := db.GetProjectByName(ctx, p.Name)
	if err != nil {
		t.Fatalf("GetProjectByName: %v", err)
	}
	if got.Customer == nil || got.Customer.ID != c.ID {
		t.Errorf("Customer = %+v, want %s", got.Customer, c.ID)
	}
	if got.Rate() != 50 {
		t.Errorf("Rate = %v, want 50", got.Rate())
	}

	if _, err := db.GetProjectByName(ctx, "nope"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("missing project error = %v, want ErrNotFound", err)
	}
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	boom := errors.New("boom")

	err := db.WithTx(ctx, func(tx database.DB) error {
		if _, err := tx.CreateCustomer(ctx, "ghost", "ghost@example.com"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx error = %v, want boom", err)
	}
	if _, err := db.GetCustomerByName(ctx, "ghost"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("customer survived rollback: err = %v", err)
	}
}

func TestWithTxNested(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	err := db.WithTx(ctx, func(outer database.DB) error {
		if _, err := outer.CreateCustomer(ctx, "one", "one@example.com"); err != nil {
			return err
		}
		return outer.WithTx(ctx, func(inner database.DB) error {
			_, err := inner.CreateCustomer(ctx, "two", "two@example.com")
			return err
		})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	customers, err := db.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("ListCustomers: %v", err)
	}
	if len(customers) != 2 {
		t.Errorf("got %d customers, want 2", len(customers))
	}
}

func TestSingleRunningEntry(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, p := seedProject(t, db)
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	if _, err := db.CreateTimeEntry(ctx, p.ID, start, nil, nil); err != nil {
		t.Fatalf("first running entry: %v", err)
	}
	if _, err := db.CreateTimeEntry(ctx, p.ID, start.Add(time.Minute), nil, nil); !errors.Is(err, database.ErrTimerRunning) {
		t.Errorf("second running entry error = %v, want ErrTimerRunning", err)
	}

	n, err := db.CountRunningTimeEntries(ctx)
	if err != nil {
		t.Fatalf("CountRunningTimeEntries: %v", err)
	}
	if n != 1 {
		t.Errorf("running = %d, want 1", n)
	}
}

func TestTimesRoundTripAsUTC(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, p := seedProject(t, db)

	zone := time.FixedZone("EST", -5*3600)
	start := time.Date(2024, 1, 15, 9, 30, 0, 0, zone)
	e := closedEntry(t, db, p.ID, start, time.Hour)

	got, err := db.GetTimeEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetTimeEntry: %v", err)
	}
	if !got.StartTime.Equal(start) || got.StartTime.Location() != time.UTC {
		t.Errorf("StartTime = %v, want %v in UTC", got.StartTime, start.UTC())
	}
	if got.ProjectName != "website" {
		t.Errorf("ProjectName = %q, want website", got.ProjectName)
	}
}

func TestListTimeEntriesFilters(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, p := seedProject(t, db)
	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

	closedEntry(t, db, p.ID, day, time.Hour)
	closedEntry(t, db, p.ID, day.AddDate(0, 0, 1), time.Hour)
	closedEntry(t, db, p.ID, day.AddDate(0, 0, 2), time.Hour)
	if _, err := db.CreateTimeEntry(ctx, p.ID, day.AddDate(0, 0, 3), nil, nil); err != nil {
		t.Fatalf("CreateTimeEntry: %v", err)
	}

	from, to := day.AddDate(0, 0, 1), day.AddDate(0, 0, 3)
	tests := []struct {
		name  string
		query database.TimeEntryQuery
		want  int
	}{
		{"all", database.TimeEntryQuery{}, 4},
		{"closed", database.TimeEntryQuery{ClosedOnly: true}, 3},
		{"running", database.TimeEntryQuery{RunningOnly: true}, 1},
		{"range is half open", database.TimeEntryQuery{From: &from, To: &to}, 2},
		{"limit", database.TimeEntryQuery{Limit: 2}, 2},
		{"other project", database.TimeEntryQuery{ProjectID: "missing"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListTimeEntries(ctx, tt.query)
			if err != nil {
				t.Fatalf("ListTimeEntries: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}

	asc, _ := db.ListTimeEntries(ctx, database.TimeEntryQuery{ClosedOnly: true, Ascending: true})
	if len(asc) == 3 && !asc[0].StartTime.Equal(day) {
		t.Errorf("ascending order starts at %v, want %v", asc[0].StartTime, day)
	}
}

func TestCreateInvoiceStampsAtomically(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	c, p := seedProject(t, db)
	day := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	a := closedEntry(t, db, p.ID, day, time.Hour)
	b := closedEntry(t, db, p.ID, day.Add(2*time.Hour), time.Hour)

	ext := "in_1"
	inv, err := db.CreateInvoice(ctx, database.InvoiceDetails{
		ProjectID: p.ID, CustomerID: c.ID, TotalHours: 1, TotalAmount: 50, ExternalID: &ext, EntryIDs: []string{a.ID},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	// a is already billed, so nothing in this invoice may be written.
	_, err = db.CreateInvoice(ctx, database.InvoiceDetails{
		ProjectID: p.ID, CustomerID: c.ID, TotalHours: 2, TotalAmount: 100, EntryIDs: []string{a.ID, b.ID},
	})
	if !errors.Is(err, database.ErrAlreadyBilled) {
		t.Fatalf("double billing error = %v, want ErrAlreadyBilled", err)
	}

	gotA, _ := db.GetTimeEntry(ctx, a.ID)
	gotB, _ := db.GetTimeEntry(ctx, b.ID)
	if gotA.InvoiceID == nil || *gotA.InvoiceID != inv.ID {
		t.Errorf("entry a invoice = %v, want %s", gotA.InvoiceID, inv.ID)
	}
	if gotB.InvoiceID != nil {
		t.Errorf("entry b stamped with %s by a rolled-back invoice", *gotB.InvoiceID)
	}

	invoices, err := db.ListInvoices(ctx, "")
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(invoices) != 1 {
		t.Fatalf("got %d invoices, want 1", len(invoices))
	}
	if invoices[0].ProjectName != "website" || invoices[0].CustomerName != "acme" {
		t.Errorf("invoice names = %q / %q", invoices[0].ProjectName, invoices[0].CustomerName)
	}

	if _, err := db.CreateInvoice(ctx, database.InvoiceDetails{ProjectID: p.ID, CustomerID: c.ID}); !errors.Is(err, database.ErrNothingToStamp) {
		t.Errorf("empty invoice error = %v, want ErrNothingToStamp", err)
	}
}

func TestSettingsUpsert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	if _, err := db.GetSetting(ctx, "timezone"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("unset setting error = %v, want ErrNotFound", err)
	}
	for _, v := range []string{"UTC", "Europe/Berlin"} {
		if err := db.SetSetting(ctx, "timezone", v); err != nil {
			t.Fatalf("SetSetting(%s): %v", v, err)
		}
	}

	all, err := db.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(all) != 1 || all["timezone"] != "Europe/Berlin" {
		t.Errorf("settings = %v", all)
	}
}

func TestDeleteCustomerUnassignsProjects(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	c, p := seedProject(t, db)

	if err := db.DeleteCustomer(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
	got, err := db.GetProjectByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProjectByID: %v", err)
	}
	if got.CustomerID != nil || got.Customer != nil {
		t.Errorf("project still assigned to %v", got.CustomerID)
	}
	if err := db.DeleteCustomer(ctx, c.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestTasksFollowTheirProject(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, p := seedProject(t, db)

	task, err := db.CreateTask(ctx, database.TaskDetails{ProjectID: p.ID, Title: "copy", Status: models.TaskTodo, Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ProjectName != "website" || task.Status != models.TaskTodo {
		t.Errorf("task = %+v", task)
	}

	tag, err := db.CreateTag(ctx, "launch", "#ef4444")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := db.AddTaskTag(ctx, task.ID, tag.ID); err != nil {
			t.Fatalf("AddTaskTag #%d: %v", i+1, err)
		}
	}
	got, err := db.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "launch" {
		t.Errorf("tags = %+v", got.Tags)
	}

	if err := db.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := db.GetTask(ctx, task.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("task survived its project: %v", err)
	}
}

func TestBackupNeedsLocalSQLite(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	err := db.WithTx(ctx, func(tx database.DB) error {
		return tx.Backup(ctx, filepath.Join(t.TempDir(), "b.db"))
	})
	if err == nil {
		t.Error("backup inside a transaction was accepted")
	}
	if err := db.Restore(ctx, filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("restore from a missing file was accepted")
	}
}
