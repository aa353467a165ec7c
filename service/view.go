package service

import (
	"context"

	"github.com/emzola/bookform/data"
	"github.com/emzola/bookform/internal/validator"
)

// FeedbackKind classifies the message shown in the feedback area.
type FeedbackKind string

const (
	FeedbackNone    FeedbackKind = ""
	FeedbackInfo    FeedbackKind = "info"
	FeedbackSuccess FeedbackKind = "success"
	FeedbackError   FeedbackKind = "error"
)

// Feedback is the single message shown to the user after an operation.
type Feedback struct {
	Kind    FeedbackKind
	Message string
}

// View is everything the form front end shows: edit state, form values,
// feedback and the rendered list. Operations take a View and return the next one.
type View struct {
	State    data.EditState
	Form     data.BookForm
	Feedback Feedback
	Books    []*data.Book
	// Loaded is set once Books reflects a successful fetch.
	Loaded bool
}

// Action names a per-row operation.
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actions lists the row actions in display order.
var Actions = []Action{ActionEdit, ActionDelete}

// Known reports whether a is one of Actions.
func (a Action) Known() bool {
	names := make([]string, len(Actions))
	for i, known := range Actions {
		names[i] = string(known)
	}
	return validator.In(string(a), names...)
}

// RowAction addresses an action at the row whose record has ID.
type RowAction struct {
	ID     int64
	Action Action
}

// ConfirmFunc asks the user to confirm prompt and reports the answer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirmed answers yes without asking. Use it when the front end has already
// collected the confirmation.
func Confirmed(context.Context, string) bool { return true }

func info(msg string) Feedback    { return Feedback{Kind: FeedbackInfo, Message: msg} }
func success(msg string) Feedback { return Feedback{Kind: FeedbackSuccess, Message: msg} }
