package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gantt/internal/models"
)

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "gantt.db"), nil, opts...)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func newTask(t *testing.T, name, building string, rowIndex *int64, start, end string) models.Task {
	t.Helper()
	return models.Task{
		Name:      name,
		Building:  building,
		RowIndex:  rowIndex,
		StartDate: mustDate(t, start),
		EndDate:   mustDate(t, end),
	}
}

func i64(v int64) *int64 { return &v }

func TestCreateTaskAppliesDefaults(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateTask(ctx, models.Task{
		Name:         "Excavation",
		StartDate:    mustDate(t, "2025-01-06"),
		EndDate:      mustDate(t, "2025-01-10"),
		Dependencies: " 7 , 8",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected generated id")
	}
	if created.Building != models.DefaultBuilding || created.Color != models.DefaultColor || created.Type != models.TypeTask {
		t.Errorf("defaults missing: %+v", created)
	}
	if created.Dependencies != "7,8" {
		t.Errorf("Dependencies = %q", created.Dependencies)
	}
	if created.StartDate.String() != "2025-01-06" || created.EndDate.String() != "2025-01-10" {
		t.Errorf("dates = %s..%s", created.StartDate, created.EndDate)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestCreateTaskRejectsInvalid(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	task := newTask(t, "Backfill", "A", nil, "2025-02-10", "2025-02-01")
	task.Progress = 120
	task.Color = "blue"

	_, err := store.CreateTask(ctx, task)
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Messages) != 3 {
		t.Errorf("messages = %v, want 3", verr.Messages)
	}

	tasks, err := store.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("invalid task persisted: %+v", tasks)
	}
}

func TestListTasksOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	inputs := []models.Task{
		newTask(t, "B2", "B", i64(2), "2025-01-01", "2025-01-02"),
		newTask(t, "A1", "A", i64(1), "2025-01-01", "2025-01-02"),
		newTask(t, "B1", "B", i64(1), "2025-01-01", "2025-01-02"),
		newTask(t, "Bnil-late", "B", nil, "2025-03-01", "2025-03-02"),
		newTask(t, "Bnil-early", "B", nil, "2025-02-01", "2025-02-02"),
	}
	for _, in := range inputs {
		if _, err := store.CreateTask(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}

	tasks, err := store.ListTasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"A1", "Bnil-early", "Bnil-late", "B1", "B2"}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, name := range want {
		if tasks[i].Name != name {
			t.Errorf("position %d = %s, want %s", i, tasks[i].Name, name)
		}
	}
}

func TestListTasksEmpty(t *testing.T) {
	store := openTestStore(t)
	tasks, err := store.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("tasks = %#v, want empty non-nil slice", tasks)
	}
}

func TestUpdateTaskMergesAndRevalidates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	notes := "crane booked"
	task := newTask(t, "Steel", "C", i64(1), "2025-05-10", "2025-05-20")
	task.Notes = &notes
	created, err := store.CreateTask(ctx, task)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// end_date alone is compared against the stored start_date.
	_, err = store.UpdateTask(ctx, created.ID, models.TaskPatch{EndDate: models.Some(mustDate(t, "2025-05-01"))})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}

	updated, err := store.UpdateTask(ctx, created.ID, models.TaskPatch{
		EndDate:  models.Some(mustDate(t, "2025-05-10")),
		Progress: models.Some(100),
		Notes:    models.Null[string](),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.EndDate.String() != "2025-05-10" || updated.Progress != 100 {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Notes != nil {
		t.Errorf("Notes = %q, want cleared", *updated.Notes)
	}
	if updated.Name != "Steel" || updated.RowIndex == nil || *updated.RowIndex != 1 {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	stored, err := store.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Progress != 100 {
		t.Errorf("stored progress = %d", stored.Progress)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.UpdateTask(context.Background(), 99, models.TaskPatch{Progress: models.Some(10)})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestDeleteTaskTwice(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	parent, err := store.CreateTask(ctx, newTask(t, "Parent", "A", nil, "2025-01-01", "2025-01-05"))
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	child := newTask(t, "Child", "A", nil, "2025-01-02", "2025-01-03")
	child.ParentID = &parent.ID
	child, err = store.CreateTask(ctx, child)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	if err := store.DeleteTask(ctx, parent.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := store.DeleteTask(ctx, parent.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete = %v, want ErrTaskNotFound", err)
	}

	got, err := store.GetTask(ctx, child.ID)
	if err != nil {
		t.Fatalf("child removed by parent delete: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != parent.ID {
		t.Errorf("child parent_id = %v, want dangling %d", got.ParentID, parent.ID)
	}
}

func TestDateRange(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	today := mustDate(t, "2025-06-15")

	empty, err := store.DateRange(ctx, today)
	if err != nil {
		t.Fatalf("empty range: %v", err)
	}
	if empty.Start.String() != "2025-06-15" || empty.End.String() != "2025-09-15" {
		t.Errorf("empty range = %s..%s", empty.Start, empty.End)
	}

	for _, in := range []models.Task{
		newTask(t, "One", "A", nil, "2025-03-10", "2025-03-20"),
		newTask(t, "Two", "B", nil, "2025-04-01", "2025-07-04"),
	} {
		if _, err := store.CreateTask(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := store.DateRange(ctx, today)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if got.Start.String() != "2025-02-24" || got.End.String() != "2025-07-18" {
		t.Errorf("range = %s..%s, want 2025-02-24..2025-07-18", got.Start, got.End)
	}
}

func TestReferenceCheck(t *testing.T) {
	ctx := context.Background()

	loose := openTestStore(t)
	dangling := newTask(t, "Loose", "A", nil, "2025-01-01", "2025-01-02")
	dangling.ParentID = i64(42)
	dangling.Dependencies = "41"
	if _, err := loose.CreateTask(ctx, dangling); err != nil {
		t.Fatalf("unchecked store rejected dangling refs: %v", err)
	}

	strict := openTestStore(t, WithReferenceCheck())
	_, err := strict.CreateTask(ctx, dangling)
	var verr *models.ValidationError
	if !errors.As(err, &verr) || len(verr.Messages) != 2 {
		t.Fatalf("expected two reference errors, got %v", err)
	}

	base, err := strict.CreateTask(ctx, newTask(t, "Base", "A", nil, "2025-01-01", "2025-01-02"))
	if err != nil {
		t.Fatalf("create base: %v", err)
	}
	_, err = strict.UpdateTask(ctx, base.ID, models.TaskPatch{ParentID: models.Some(base.ID)})
	if !errors.As(err, &verr) {
		t.Fatalf("self parent accepted: %v", err)
	}
}
