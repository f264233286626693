package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wes/paca/internal/database"
	"github.com/wes/paca/internal/models"
	"github.com/wes/paca/internal/service"
	"github.com/wes/paca/internal/utils"
)

func (f *fixture) task(t *testing.T, project, title, priority string) *models.Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), service.TaskInput{Project: project, Title: title, Priority: priority})
	if err != nil {
		t.Fatalf("CreateTask(%s): %v", title, err)
	}
	return task
}

func TestCycleTaskStatus(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "UTC")
	f.billableProject(t, "website", 50, "")
	task := f.task(t, "website", "Write copy", "")

	if task.Status != models.TaskTodo || task.Priority != models.PriorityMedium {
		t.Fatalf("new task = %s/%s, want todo/medium", task.Status, task.Priority)
	}

	want := []models.TaskStatus{models.TaskInProgress, models.TaskDone, models.TaskTodo}
	for _, status := range want {
		got, err := f.svc.CycleTaskStatus(ctx, task.ID)
		if err != nil {
			t.Fatalf("CycleTaskStatus: %v", err)
		}
		if got.Status != status {
			t.Errorf("status = %s, want %s", got.Status, status)
		}
		switch {
		case status == models.TaskDone && (got.CompletedAt == nil || !got.CompletedAt.Equal(testNow)):
			t.Errorf("done task CompletedAt = %v, want %v", got.CompletedAt, testNow)
		case status != models.TaskDone && got.CompletedAt != nil:
			t.Errorf("%s task CompletedAt = %v, want nil", status, got.CompletedAt)
		}
	}
}

func TestUpdateTask(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "America/New_York")
	f.billableProject(t, "website", 50, "")
	task := f.task(t, "website", "Write copy", "low")

	got, err := f.svc.UpdateTask(ctx, task.ID, service.TaskInput{
		Title:       "Write landing copy",
		Description: utils.ToPtr("  hero and pricing  "),
		Status:      "done",
		Priority:    "urgent",
		Due:         "2024-06-20",
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.Title != "Write landing copy" || utils.FromPtr(got.Description) != "hero and pricing" || got.Priority != models.PriorityUrgent {
		t.Errorf("updated task = %+v", got)
	}
	if got.CompletedAt == nil {
		t.Error("done task has no completion time")
	}
	// Due dates are midnight in the display zone.
	if want := time.Date(2024, 6, 20, 4, 0, 0, 0, time.UTC); got.DueDate == nil || !got.DueDate.Equal(want) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, want)
	}
	if due := f.svc.FormatDue(ctx, got.DueDate); due != "2024-06-20" {
		t.Errorf("FormatDue = %q, want 2024-06-20", due)
	}

	got, err = f.svc.UpdateTask(ctx, task.ID, service.TaskInput{Status: "todo", Due: "none"})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if got.CompletedAt != nil || got.DueDate != nil || got.Title != "Write landing copy" {
		t.Errorf("reopened task = %+v", got)
	}

	for _, in := range []service.TaskInput{{Status: "blocked"}, {Priority: "asap"}, {Due: "tomorrow"}} {
		if _, err := f.svc.UpdateTask(ctx, task.ID, in); !errors.Is(err, service.ErrInvalidInput) {
			t.Errorf("UpdateTask(%+v) error = %v, want ErrInvalidInput", in, err)
		}
	}
	if _, err := f.svc.UpdateTask(ctx, "missing", service.TaskInput{Title: "x"}); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("missing task error = %v, want ErrNotFound", err)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "UTC")
	f.billableProject(t, "website", 50, "")

	tests := []struct {
		name string
		in   service.TaskInput
		want error
	}{
		{"empty title", service.TaskInput{Project: "website", Title: "  "}, service.ErrInvalidInput},
		{"bad priority", service.TaskInput{Project: "website", Title: "x", Priority: "someday"}, service.ErrInvalidInput},
		{"bad due date", service.TaskInput{Project: "website", Title: "x", Due: "06/20/2024"}, service.ErrInvalidInput},
		{"unknown project", service.TaskInput{Project: "nope", Title: "x"}, database.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.CreateTask(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("CreateTask error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestListTasksWorkingOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "UTC")
	f.billableProject(t, "website", 50, "")
	f.billableProject(t, "docs", 40, "")

	low := f.task(t, "website", "low", "low")
	urgent := f.task(t, "website", "urgent", "urgent")
	active := f.task(t, "website", "active", "low")
	done := f.task(t, "website", "done", "urgent")
	f.task(t, "docs", "other project", "high")

	if _, err := f.svc.CycleTaskStatus(ctx, active.ID); err != nil {
		t.Fatalf("CycleTaskStatus: %v", err)
	}
	if _, err := f.svc.UpdateTask(ctx, done.ID, service.TaskInput{Status: "done"}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	open, err := f.svc.ListTasks(ctx, "website", false)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	wantIDs := []string{active.ID, urgent.ID, low.ID}
	if len(open) != len(wantIDs) {
		t.Fatalf("got %d open tasks, want %d", len(open), len(wantIDs))
	}
	for i, id := range wantIDs {
		if open[i].ID != id {
			t.Errorf("open[%d] = %s, want %s", i, open[i].Title, id)
		}
	}

	all, err := f.svc.ListTasks(ctx, "", true)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(all) != 5 || all[len(all)-1].ID != done.ID {
		t.Errorf("all tasks should end with the done one; got %d tasks", len(all))
	}
}

func TestCleanupCompletedTasks(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "UTC")
	p := f.billableProject(t, "website", 50, "")

	old := f.task(t, "website", "old", "")
	recent := f.task(t, "website", "recent", "")
	f.task(t, "website", "open", "")

	longAgo := testNow.Add(-4 * 24 * time.Hour)
	if _, err := f.db.UpdateTask(ctx, old.ID, database.TaskDetails{
		ProjectID: p.ID, Title: old.Title, Status: models.TaskDone, Priority: old.Priority, CompletedAt: &longAgo,
	}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if _, err := f.svc.UpdateTask(ctx, recent.ID, service.TaskInput{Status: "done"}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	n, err := f.svc.CleanupCompletedTasks(ctx, 3*24*time.Hour)
	if err != nil {
		t.Fatalf("CleanupCompletedTasks: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d tasks, want 1", n)
	}
	if _, err := f.db.GetTask(ctx, old.ID); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("old done task still present: %v", err)
	}

	if n, _ := f.svc.CleanupCompletedTasks(ctx, 0); n != 0 {
		t.Errorf("zero retention deleted %d tasks", n)
	}
	remaining, _ := f.svc.ListTasks(ctx, "", true)
	if len(remaining) != 2 {
		t.Errorf("got %d remaining tasks, want 2", len(remaining))
	}
}

func TestTagTask(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "UTC")
	f.billableProject(t, "website", 50, "")
	task := f.task(t, "website", "Write copy", "")

	for i := 0; i < 2; i++ {
		got, err := f.svc.TagTask(ctx, task.ID, "launch")
		if err != nil {
			t.Fatalf("TagTask: %v", err)
		}
		if len(got.Tags) != 1 || got.Tags[0].Name != "launch" {
			t.Errorf("tags = %+v, want [launch]", got.Tags)
		}
	}

	if _, err := f.svc.CreateTag(ctx, "launch", ""); err == nil {
		t.Error("duplicate tag was created")
	}
	tags, err := f.svc.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 1 || tags[0].Color != "#6b7280" {
		t.Errorf("tags = %+v", tags)
	}

	got, err := f.svc.UntagTask(ctx, task.ID, "launch")
	if err != nil {
		t.Fatalf("UntagTask: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("tags after untag = %+v", got.Tags)
	}
	if _, err := f.svc.UntagTask(ctx, task.ID, "launch"); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("second untag error = %v, want ErrNotFound", err)
	}

	if _, err := f.svc.TagTask(ctx, task.ID, "launch"); err != nil {
		t.Fatalf("TagTask: %v", err)
	}
	if err := f.svc.DeleteTag(ctx, "launch"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if got, _ := f.db.GetTask(ctx, task.ID); len(got.Tags) != 0 {
		t.Errorf("deleted tag still on task: %+v", got.Tags)
	}
}

func TestTaskSummary(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "UTC")
	f.billableProject(t, "website", 50, "")

	overdue, err := f.svc.CreateTask(ctx, service.TaskInput{Project: "website", Title: "late", Due: "2024-06-01"})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	doneLate, _ := f.svc.CreateTask(ctx, service.TaskInput{Project: "website", Title: "late but done", Due: "2024-06-01"})
	f.svc.CreateTask(ctx, service.TaskInput{Project: "website", Title: "future", Due: "2024-07-01"})
	f.svc.UpdateTask(ctx, doneLate.ID, service.TaskInput{Status: "done"})
	f.svc.CycleTaskStatus(ctx, overdue.ID)

	sum, err := f.svc.TaskSummary(ctx)
	if err != nil {
		t.Fatalf("TaskSummary: %v", err)
	}
	want := service.TaskSummary{Total: 3, Todo: 1, InProgress: 1, Done: 1, Overdue: 1, CompletionRate: 33}
	if sum != want {
		t.Errorf("summary = %+v, want %+v", sum, want)
	}
}

func TestExportImportDatabase(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "UTC")
	f.billableProject(t, "website", 50, "acme")

	path, err := f.svc.ExportDatabase(ctx, filepath.Join(t.TempDir(), "backups"))
	if err != nil {
		t.Fatalf("ExportDatabase: %v", err)
	}
	if filepath.Base(path) != "paca-backup-2024-06-19T16-00-00Z.db" {
		t.Errorf("backup name = %s", filepath.Base(path))
	}

	if _, err := f.svc.CreateCustomer(ctx, "later", "later@example.com"); err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	if err := f.svc.ImportDatabase(ctx, path); err != nil {
		t.Fatalf("ImportDatabase: %v", err)
	}
	customers, err := f.svc.ListCustomers(ctx)
	if err != nil {
		t.Fatalf("ListCustomers after import: %v", err)
	}
	if len(customers) != 1 || customers[0].Name != "acme" {
		t.Errorf("customers after import = %d, want only acme", len(customers))
	}

	junk := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(junk, []byte("not a database"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.ImportDatabase(ctx, junk); !errors.Is(err, database.ErrNotPacaDB) {
		t.Errorf("importing a text file error = %v, want ErrNotPacaDB", err)
	}
	if _, err := f.svc.GetProjectByName(ctx, "website"); err != nil {
		t.Errorf("database unusable after rejected import: %v", err)
	}
}
