package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/emzola/bookform/data"
	"github.com/emzola/bookform/data/dto"
)

// User-facing messages.
const (
	MsgCreated         = "book registered"
	MsgUpdated         = "book updated"
	MsgDeleted         = "book deleted"
	MsgNotFound        = "record not found"
	MsgUpdateNotFound  = "update target not found"
	msgEditingTemplate = "editing book %d"
	msgDeletePrompt    = "delete book %d?"
)

type books interface {
	ListBooks(ctx context.Context, v View) (View, error)
	Submit(ctx context.Context, v View, form data.BookForm) (View, error)
	CreateBook(ctx context.Context, v View, form data.BookForm) (View, error)
	UpdateBook(ctx context.Context, v View, form data.BookForm) (View, error)
	DeleteBook(ctx context.Context, v View, id int64, confirm ConfirmFunc) (View, error)
	LoadForEdit(ctx context.Context, v View, id int64) (View, error)
	CancelEdit(v View) View
	Dispatch(ctx context.Context, v View, a RowAction, confirm ConfirmFunc) (View, error)
}

// ListBooks service fetches every book and replaces the rendered list.
// On failure the previous list is kept.
func (s *service) ListBooks(ctx context.Context, v View) (View, error) {
	v.Feedback = Feedback{}
	books, err := s.repo.GetAllBooks(ctx)
	if err != nil {
		return s.fail(v, newRequestError(OpFetch, err, ""))
	}
	v.Books = books
	v.Loaded = true
	return v, nil
}

// Submit service sends the form: an update while a record is being edited,
// a create otherwise.
func (s *service) Submit(ctx context.Context, v View, form data.BookForm) (View, error) {
	if v.State.IsEditing() {
		return s.UpdateBook(ctx, v, form)
	}
	return s.CreateBook(ctx, v, form)
}

// CreateBook service validates the form and creates a new book.
func (s *service) CreateBook(ctx context.Context, v View, form data.BookForm) (View, error) {
	v.Form = form
	v.Feedback = Feedback{}
	if err := data.CheckBook(form, s.now()); err != nil {
		return s.fail(v, failedValidation(err))
	}
	_, err := s.repo.CreateBook(ctx, dto.NewBookRequestBody(form))
	if err != nil {
		return s.fail(v, newRequestError(OpCreate, err, ""))
	}
	v.Form = data.BookForm{}
	return s.succeed(ctx, v, MsgCreated)
}

// UpdateBook service validates the form and replaces the record being edited.
func (s *service) UpdateBook(ctx context.Context, v View, form data.BookForm) (View, error) {
	v.Form = form
	v.Feedback = Feedback{}
	id, ok := v.State.ID()
	if !ok {
		return s.fail(v, ErrNotEditing)
	}
	if err := data.CheckBook(form, s.now()); err != nil {
		return s.fail(v, failedValidation(err))
	}
	_, err := s.repo.UpdateBook(ctx, id, dto.NewBookRequestBody(form))
	if err != nil {
		return s.fail(v, newRequestError(OpUpdate, err, MsgUpdateNotFound))
	}
	v.State = data.Idle
	v.Form = data.BookForm{}
	return s.succeed(ctx, v, MsgUpdated)
}

// DeleteBook service deletes a book once confirm agrees. A declined
// confirmation returns v unchanged and sends nothing.
func (s *service) DeleteBook(ctx context.Context, v View, id int64, confirm ConfirmFunc) (View, error) {
	if confirm == nil || !confirm(ctx, fmt.Sprintf(msgDeletePrompt, id)) {
		return v, nil
	}
	v.Feedback = Feedback{}
	err := s.repo.DeleteBook(ctx, id)
	if err != nil {
		return s.fail(v, newRequestError(OpDelete, err, ""))
	}
	if v.State.Is(id) {
		v.State = data.Idle
		v.Form = data.BookForm{}
	}
	return s.succeed(ctx, v, MsgDeleted)
}

// LoadForEdit service fetches one book, fills the form with it and enters
// edit mode. Unsaved edits to another record are discarded.
func (s *service) LoadForEdit(ctx context.Context, v View, id int64) (View, error) {
	v.Feedback = Feedback{}
	book, err := s.repo.GetBook(ctx, id)
	if err != nil {
		return s.fail(v, newRequestError(OpLoad, err, MsgNotFound))
	}
	v.Form = book.Form()
	v.State = data.Editing(id)
	v.Feedback = info(fmt.Sprintf(msgEditingTemplate, id))
	return v, nil
}

// CancelEdit leaves edit mode and clears the form.
func (s *service) CancelEdit(v View) View {
	v.State = data.Idle
	v.Form = data.BookForm{}
	v.Feedback = Feedback{}
	return v
}

type rowHandler func(ctx context.Context, v View, id int64, confirm ConfirmFunc) (View, error)

func (s *service) rowHandlers() map[Action]rowHandler {
	return map[Action]rowHandler{
		ActionEdit: func(ctx context.Context, v View, id int64, _ ConfirmFunc) (View, error) {
			return s.LoadForEdit(ctx, v, id)
		},
		ActionDelete: s.DeleteBook,
	}
}

// Dispatch runs the operation bound to a row action.
func (s *service) Dispatch(ctx context.Context, v View, a RowAction, confirm ConfirmFunc) (View, error) {
	handle, ok := s.rowHandlers()[a.Action]
	if !a.Action.Known() || !ok {
		return s.fail(v, fmt.Errorf("%w %q", ErrUnknownAction, a.Action))
	}
	return handle(ctx, v, a.ID, confirm)
}

// succeed shows msg and refreshes the list. A failed refresh replaces msg
// with the fetch failure; the successful operation's effects stand.
func (s *service) succeed(ctx context.Context, v View, msg string) (View, error) {
	v, err := s.ListBooks(ctx, v)
	if err != nil {
		return v, err
	}
	v.Feedback = success(msg)
	return v, nil
}

// fail records err as error feedback. Request failures are logged; validation
// failures are the user's to fix and are not.
func (s *service) fail(v View, err error) (View, error) {
	v.Feedback = Feedback{Kind: FeedbackError, Message: feedbackMessage(err)}
	var rerr *RequestError
	if errors.As(err, &rerr) {
		s.logger.PrintError(rerr.Err, map[string]string{
			"op":      rerr.Op,
			"message": rerr.Message,
			"state":   v.State.String(),
		})
	}
	return v, err
}
