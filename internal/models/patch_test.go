package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTaskPatchDistinguishesAbsentAndNull(t *testing.T) {
	notes := "pour after inspection"
	row := int64(3)
	task := Task{Name: "Slab", Notes: &notes, RowIndex: &row, Progress: 10}

	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{"notes": null, "progress": 80}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	patch.Apply(&task)

	if task.Notes != nil {
		t.Errorf("Notes = %q, want cleared", *task.Notes)
	}
	if task.RowIndex == nil || *task.RowIndex != 3 {
		t.Errorf("RowIndex changed: %v", task.RowIndex)
	}
	if task.Progress != 80 {
		t.Errorf("Progress = %d, want 80", task.Progress)
	}
	if task.Name != "Slab" {
		t.Errorf("Name = %q, want unchanged", task.Name)
	}
}

func TestTaskPatchNullOnRequiredFieldZeroes(t *testing.T) {
	task := Task{Name: "Slab"}
	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{"name": null}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	patch.Apply(&task)
	if task.Name != "" {
		t.Fatalf("Name = %q, want empty", task.Name)
	}
}

func TestTaskPatchDates(t *testing.T) {
	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{"end_date": "2025-04-10T00:00:00.000Z"}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var task Task
	patch.Apply(&task)
	if got := task.EndDate.String(); got != "2025-04-10" {
		t.Fatalf("EndDate = %q", got)
	}
	if !task.StartDate.IsZero() {
		t.Fatalf("StartDate set: %v", task.StartDate)
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(time.Date(2025, 1, 31, 18, 30, 0, 0, time.UTC))
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-01-31"` {
		t.Fatalf("marshal = %s", b)
	}

	var zero Date
	b, _ = json.Marshal(zero)
	if string(b) != "null" {
		t.Fatalf("zero marshal = %s", b)
	}

	if _, err := ParseDate("31/01/2025"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestDateArithmetic(t *testing.T) {
	d, _ := ParseDate("2025-01-31")
	if got := d.AddDays(-14).String(); got != "2025-01-17" {
		t.Errorf("AddDays(-14) = %s", got)
	}
	if got := d.AddMonths(3).String(); got != "2025-05-01" {
		t.Errorf("AddMonths(3) = %s", got)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2025-02-03"); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if d.String() != "2025-02-03" {
		t.Fatalf("scan = %s", d)
	}
	if err := d.Scan([]byte("2025-02-04")); err != nil || d.String() != "2025-02-04" {
		t.Fatalf("scan bytes = %s, %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}
