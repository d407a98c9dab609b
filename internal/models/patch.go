package models

import "encoding/json"

// Optional records whether a JSON key was present at all, and if it was,
// whether it carried null. A zero Optional means "not supplied".
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Some builds a supplied, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null builds a supplied Optional carrying an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// TaskPatch is a partial update. Absent keys leave the stored value alone,
// null clears optional fields and zeroes required ones (which then fails
// validation).
type TaskPatch struct {
	Name         Optional[string]   `json:"name"`
	Building     Optional[string]   `json:"building"`
	SubHeader    Optional[string]   `json:"sub_header"`
	Company      Optional[string]   `json:"company"`
	StartDate    Optional[Date]     `json:"start_date"`
	EndDate      Optional[Date]     `json:"end_date"`
	Progress     Optional[int]      `json:"progress"`
	Dependencies Optional[string]   `json:"dependencies"`
	ParentID     Optional[int64]    `json:"parent_id"`
	RowIndex     Optional[int64]    `json:"row_index"`
	Color        Optional[string]   `json:"color"`
	Notes        Optional[string]   `json:"notes"`
	Type         Optional[TaskType] `json:"type"`
	Symbol       Optional[string]   `json:"symbol"`
}

// Apply merges the patch onto t.
func (p TaskPatch) Apply(t *Task) {
	setValue(&t.Name, p.Name)
	setValue(&t.Building, p.Building)
	setPointer(&t.SubHeader, p.SubHeader)
	setPointer(&t.Company, p.Company)
	setValue(&t.StartDate, p.StartDate)
	setValue(&t.EndDate, p.EndDate)
	setValue(&t.Progress, p.Progress)
	setValue(&t.Dependencies, p.Dependencies)
	setPointer(&t.ParentID, p.ParentID)
	setPointer(&t.RowIndex, p.RowIndex)
	setValue(&t.Color, p.Color)
	setPointer(&t.Notes, p.Notes)
	setValue(&t.Type, p.Type)
	setPointer(&t.Symbol, p.Symbol)
}

func setValue[T any](dst *T, o Optional[T]) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		var zero T
		*dst = zero
		return
	}
	*dst = *o.Value
}

func setPointer[T any](dst **T, o Optional[T]) {
	if !o.Set {
		return
	}
	*dst = o.Value
}
