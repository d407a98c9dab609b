package models

import (
	"strings"
	"time"
)

// TaskType controls how a row is drawn on the chart.
type TaskType string

const (
	TypeTask      TaskType = "task"
	TypeMilestone TaskType = "milestone"
	TypeSection   TaskType = "section"
	TypeText      TaskType = "text"
)

// Defaults applied to a task on create when the client leaves a field empty.
const (
	DefaultBuilding = "Building 100"
	DefaultColor    = "#3498db"
	DefaultType     = TypeTask
)

// Task is a schedulable work item shown as one bar of the Gantt chart.
//
// ParentID and Dependencies point at other tasks but are not enforced by the
// store: deleting a task leaves children and dependents untouched, and no
// cycle check is made. See sqlite.WithReferenceCheck for the opt-in check.
type Task struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" validate:"required,max=255"`
	Building     string    `json:"building" validate:"required"`
	SubHeader    *string   `json:"sub_header"`
	Company      *string   `json:"company"`
	StartDate    Date      `json:"start_date"`
	EndDate      Date      `json:"end_date"`
	Progress     int       `json:"progress" validate:"min=0,max=100"`
	Dependencies string    `json:"dependencies" validate:"dependencies"`
	ParentID     *int64    `json:"parent_id" validate:"omitempty,gt=0"`
	RowIndex     *int64    `json:"row_index"`
	Color        string    `json:"color" validate:"rgbhex"`
	Notes        *string   `json:"notes"`
	Type         TaskType  `json:"type" validate:"oneof=task milestone section text"`
	Symbol       *string   `json:"symbol"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ApplyDefaults fills the fields a new task may omit.
func (t *Task) ApplyDefaults() {
	if strings.TrimSpace(t.Building) == "" {
		t.Building = DefaultBuilding
	}
	if t.Color == "" {
		t.Color = DefaultColor
	}
	if t.Type == "" {
		t.Type = DefaultType
	}
}

// Normalize trims free-text keys and rewrites the dependency list in its
// canonical "1,2,3" form.
func (t *Task) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.Building = strings.TrimSpace(t.Building)
	t.Color = strings.TrimSpace(t.Color)
	t.Dependencies = strings.Join(DependencyList(t.Dependencies), ",")
}

// DependencyList splits a comma-separated dependency string, dropping blanks.
// Entries are returned as written; validation decides whether they are ids.
func DependencyList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Identity is the user attribute set taken from a verified Google credential
// and carried inside session tokens. It is never persisted.
type Identity struct {
	Subject string `json:"sub,omitempty"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

// DateRange is the visible window of the chart.
type DateRange struct {
	Start Date `json:"start_date"`
	End   Date `json:"end_date"`
}
