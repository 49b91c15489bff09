package model

import "time"

// Todo is a row of the todos table.
type Todo struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Completed   bool      `json:"completed" db:"completed"`
	Owner       *string   `json:"owner" db:"owner"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// TodoInput carries the fields a caller supplied. Nil fields are not written.
type TodoInput struct {
	ID          *string `json:"id,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Owner       *string `json:"owner,omitempty"`
}

// Columns returns the supplied fields keyed by column name, excluding id.
func (in TodoInput) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if in.Name != nil {
		cols["name"] = *in.Name
	}
	if in.Description != nil {
		cols["description"] = *in.Description
	}
	if in.Completed != nil {
		cols["completed"] = *in.Completed
	}
	if in.Owner != nil {
		cols["owner"] = *in.Owner
	}
	return cols
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
