package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"

	"gantt/internal/models"
)

// ErrTaskNotFound is returned when an operation names a task id that does not exist.
var ErrTaskNotFound = errors.New("task not found")

// Store wraps access to the SQLite database and exposes high level helpers.
type Store struct {
	db        *sql.DB
	logger    *slog.Logger
	checkRefs bool
}

// Option configures a Store.
type Option func(*Store)

// WithReferenceCheck makes create and update verify that parent_id and every
// dependency name an existing task, and that a task is not its own parent.
// Deletes still never cascade.
func WithReferenceCheck() Option {
	return func(s *Store) { s.checkRefs = true }
}

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger, opts ...Option) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Dates are kept as TEXT "YYYY-MM-DD" so they sort lexically and the driver
// does not rewrite them into timestamps.
func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            building TEXT NOT NULL DEFAULT 'Building 100',
            sub_header TEXT,
            company TEXT,
            start_date TEXT NOT NULL,
            end_date TEXT NOT NULL,
            progress INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
            dependencies TEXT NOT NULL DEFAULT '',
            parent_id INTEGER,
            row_index INTEGER,
            color TEXT NOT NULL DEFAULT '#3498db',
            notes TEXT,
            type TEXT NOT NULL DEFAULT 'task',
            symbol TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_order ON tasks(building, row_index, start_date);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const taskColumns = `id, name, building, sub_header, company, start_date, end_date, progress,
        dependencies, parent_id, row_index, color, notes, type, symbol, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t                                 models.Task
		subHeader, company, notes, symbol sql.NullString
		parentID, rowIndex                sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.Name, &t.Building, &subHeader, &company, &t.StartDate, &t.EndDate, &t.Progress,
		&t.Dependencies, &parentID, &rowIndex, &t.Color, &notes, &t.Type, &symbol, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	t.SubHeader = stringPtr(subHeader)
	t.Company = stringPtr(company)
	t.Notes = stringPtr(notes)
	t.Symbol = stringPtr(symbol)
	t.ParentID = int64Ptr(parentID)
	t.RowIndex = int64Ptr(rowIndex)
	return t, nil
}

// ListTasks returns every task ordered by building, then row_index with
// unset row_index first, then start_date. id breaks remaining ties.
func (s *Store) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks
        ORDER BY building ASC, row_index IS NOT NULL, row_index ASC, start_date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask validates and inserts a new task. Validation failures come back
// as *models.ValidationError.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	t.ApplyDefaults()
	t.Normalize()
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	if err := s.checkReferences(ctx, 0, t); err != nil {
		return models.Task{}, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO tasks(name, building, sub_header, company, start_date, end_date, progress,
            dependencies, parent_id, row_index, color, notes, type, symbol)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Building, t.SubHeader, t.Company, t.StartDate, t.EndDate, t.Progress,
		t.Dependencies, t.ParentID, t.RowIndex, t.Color, t.Notes, string(t.Type), t.Symbol)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("task id: %w", err)
	}
	s.logger.Debug("task created", slog.Int64("id", id), slog.String("building", t.Building))
	return s.GetTask(ctx, id)
}

// UpdateTask merges patch onto the stored row and re-runs full validation on
// the merged result, so a lone end_date is checked against the stored
// start_date. Concurrent updates are last-write-wins.
func (s *Store) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (models.Task, error) {
	current, err := s.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	merged := current
	patch.Apply(&merged)
	merged.Normalize()
	if err := merged.Validate(); err != nil {
		return models.Task{}, err
	}
	if err := s.checkReferences(ctx, id, merged); err != nil {
		return models.Task{}, err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET name = ?, building = ?, sub_header = ?, company = ?,
            start_date = ?, end_date = ?, progress = ?, dependencies = ?, parent_id = ?, row_index = ?,
            color = ?, notes = ?, type = ?, symbol = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?`,
		merged.Name, merged.Building, merged.SubHeader, merged.Company, merged.StartDate, merged.EndDate,
		merged.Progress, merged.Dependencies, merged.ParentID, merged.RowIndex, merged.Color, merged.Notes,
		string(merged.Type), merged.Symbol, id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, ErrTaskNotFound
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task by id. Children and dependents are left as they are.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DateRange returns the chart window: earliest start_date minus 14 days to
// latest end_date plus 14 days. An empty store yields today to today plus
// three months, unpadded.
func (s *Store) DateRange(ctx context.Context, today models.Date) (models.DateRange, error) {
	var minStart, maxEnd sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MIN(start_date), MAX(end_date) FROM tasks`).Scan(&minStart, &maxEnd)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("date range: %w", err)
	}
	if !minStart.Valid || !maxEnd.Valid {
		return DefaultDateRange(today), nil
	}

	start, err := models.ParseDate(minStart.String)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("date range start: %w", err)
	}
	end, err := models.ParseDate(maxEnd.String)
	if err != nil {
		return models.DateRange{}, fmt.Errorf("date range end: %w", err)
	}
	return models.DateRange{Start: start.AddDays(-dateRangePadDays), End: end.AddDays(dateRangePadDays)}, nil
}

const dateRangePadDays = 14

// DefaultDateRange is the window shown when there is nothing to fit.
func DefaultDateRange(today models.Date) models.DateRange {
	return models.DateRange{Start: today, End: today.AddMonths(3)}
}

// checkReferences is a no-op unless the store was opened WithReferenceCheck.
func (s *Store) checkReferences(ctx context.Context, selfID int64, t models.Task) error {
	if !s.checkRefs {
		return nil
	}

	var msgs []string
	if t.ParentID != nil {
		if selfID != 0 && *t.ParentID == selfID {
			msgs = append(msgs, "parent_id must not reference the task itself")
		} else if ok, err := s.taskExists(ctx, *t.ParentID); err != nil {
			return err
		} else if !ok {
			msgs = append(msgs, fmt.Sprintf("parent_id %d does not exist", *t.ParentID))
		}
	}
	for _, dep := range models.DependencyList(t.Dependencies) {
		id, err := strconv.ParseInt(dep, 10, 64)
		if err != nil {
			continue
		}
		if selfID != 0 && id == selfID {
			msgs = append(msgs, "dependencies must not reference the task itself")
			continue
		}
		ok, err := s.taskExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			msgs = append(msgs, fmt.Sprintf("dependency %d does not exist", id))
		}
	}
	if len(msgs) > 0 {
		return &models.ValidationError{Messages: msgs}
	}
	return nil
}

func (s *Store) taskExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup task %d: %w", id, err)
	}
	return true, nil
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
