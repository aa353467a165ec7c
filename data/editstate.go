package data

import (
	"fmt"
	"strconv"
	"strings"
)

// EditState tracks which record, if any, the form is editing.
// The zero value is Idle.
type EditState struct {
	id int64
}

// Idle is the state in which submitting the form creates a new record.
var Idle = EditState{}

// Editing returns the state in which the form edits the record with the given id.
// Ids below 1 are never assigned by the API and yield Idle.
func Editing(id int64) EditState {
	if id < 1 {
		return Idle
	}
	return EditState{id: id}
}

// IsEditing reports whether a record is being edited.
func (s EditState) IsEditing() bool {
	return s.id > 0
}

// ID returns the id of the record being edited.
func (s EditState) ID() (int64, bool) {
	return s.id, s.IsEditing()
}

// Is reports whether s is editing the record with the given id.
func (s EditState) Is(id int64) bool {
	return s.IsEditing() && s.id == id
}

// Param renders s for a hidden form field: "" when Idle, the id otherwise.
func (s EditState) Param() string {
	if !s.IsEditing() {
		return ""
	}
	return strconv.FormatInt(s.id, 10)
}

func (s EditState) String() string {
	if !s.IsEditing() {
		return "idle"
	}
	return fmt.Sprintf("editing(%d)", s.id)
}

// ParseEditState is the inverse of Param.
func ParseEditState(param string) (EditState, error) {
	param = strings.TrimSpace(param)
	if param == "" {
		return Idle, nil
	}
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id < 1 {
		return Idle, fmt.Errorf("invalid editing id %q", param)
	}
	return Editing(id), nil
}
