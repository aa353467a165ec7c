package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/emzola/bookform/clients"
	"github.com/emzola/bookform/data"
	"github.com/emzola/bookform/internal/bookapitest"
	"github.com/emzola/bookform/internal/jsonlog"
	"github.com/emzola/bookform/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.Local)

func newTestService(t *testing.T) (*service, *bookapitest.Server, *bytes.Buffer) {
	t.Helper()
	api := bookapitest.NewServer(t)
	var logs bytes.Buffer
	logger := jsonlog.New(&logs, jsonlog.LevelInfo)
	repo, err := repository.New(clients.NewHTTPClient(5*time.Second), api.URL, logger)
	require.NoError(t, err)
	return New(logger, repo, WithClock(func() time.Time { return today })), api, &logs
}

func form() data.BookForm {
	return data.BookForm{Title: "A", Author: "B", ISBN: "1234567890", Price: "10", PublishDate: "2020-01-01"}
}

func price(p float64) *float64 { return &p }

func methods(reqs []bookapitest.Request) []string {
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.Method + " " + r.Path
	}
	return out
}

func TestSubmitCreatesWhenIdle(t *testing.T) {
	s, api, _ := newTestService(t)
	ctx := context.Background()

	v, err := s.Submit(ctx, View{}, form())
	require.NoError(t, err)

	assert.Equal(t, []string{"POST /api/books", "GET /api/books"}, methods(api.Requests()))
	body := api.Requests()[0].Body
	require.NotNil(t, body)
	assert.Equal(t, 10.0, body.Price)
	assert.Equal(t, "2020-01-01", body.PublishDate)

	assert.True(t, v.Form.IsZero())
	assert.Equal(t, Feedback{Kind: FeedbackSuccess, Message: MsgCreated}, v.Feedback)
	assert.Equal(t, data.Idle, v.State)
	assert.True(t, v.Loaded)
	require.Len(t, v.Books, 1)
	assert.EqualValues(t, 1, v.Books[0].ID)
}

func TestCreateTrimsFields(t *testing.T) {
	s, api, _ := newTestService(t)
	f := form()
	f.Title = "  Padded  "
	f.Price = " 12.5 "
	_, err := s.CreateBook(context.Background(), View{}, f)
	require.NoError(t, err)
	body := api.Requests()[0].Body
	assert.Equal(t, "Padded", body.Title)
	assert.Equal(t, 12.5, body.Price)
}

func TestCreateValidationNeverReachesNetwork(t *testing.T) {
	s, api, logs := newTestService(t)
	f := form()
	f.ISBN = "123"

	v, err := s.CreateBook(context.Background(), View{}, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailedValidation)
	var verr *data.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, data.ReasonISBN, verr.Reason)

	assert.Empty(t, api.Requests())
	assert.Equal(t, Feedback{Kind: FeedbackError, Message: data.ReasonISBN}, v.Feedback)
	assert.Equal(t, f, v.Form)
	assert.Empty(t, logs.String())
}

func TestCreateRequestFailureKeepsForm(t *testing.T) {
	s, api, logs := newTestService(t)
	api.Fail(http.MethodPost, "/api/books", http.StatusInternalServerError)

	v, err := s.CreateBook(context.Background(), View{}, form())
	var rerr *RequestError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, OpCreate, rerr.Op)
	assert.Equal(t, http.StatusInternalServerError, rerr.Status)
	assert.Equal(t, "create failed: 500", v.Feedback.Message)
	assert.Equal(t, FeedbackError, v.Feedback.Kind)
	assert.Equal(t, form(), v.Form)
	assert.Contains(t, logs.String(), `"op":"create"`)
}

func TestRefreshFailureAfterSuccess(t *testing.T) {
	s, api, _ := newTestService(t)
	api.Fail(http.MethodGet, "/api/books", http.StatusServiceUnavailable)

	v, err := s.CreateBook(context.Background(), View{}, form())
	require.Error(t, err)
	assert.Equal(t, 1, api.Len())
	assert.True(t, v.Form.IsZero())
	assert.Equal(t, Feedback{Kind: FeedbackError, Message: "fetch failed: 503"}, v.Feedback)
}

func TestListBooks(t *testing.T) {
	s, api, _ := newTestService(t)
	api.Seed(data.Book{Title: "T1"}, data.Book{Title: "T2"})

	v, err := s.ListBooks(context.Background(), View{Feedback: Feedback{Kind: FeedbackError, Message: "old"}})
	require.NoError(t, err)
	assert.Len(t, v.Books, 2)
	assert.Equal(t, Feedback{}, v.Feedback)

	api.Fail(http.MethodGet, "/api/books", http.StatusBadGateway)
	v2, err := s.ListBooks(context.Background(), v)
	require.Error(t, err)
	assert.Equal(t, v.Books, v2.Books)
	assert.Equal(t, "fetch failed: 502", v2.Feedback.Message)
}

func TestLoadForEdit(t *testing.T) {
	s, api, _ := newTestService(t)
	seeded := api.Seed(data.Book{Title: "T", Author: "A", ISBN: "1234567890", Price: price(9.5), PublishDate: "2019-05-01"})
	id := seeded[0].ID

	v, err := s.LoadForEdit(context.Background(), View{}, id)
	require.NoError(t, err)
	assert.True(t, v.State.Is(id))
	assert.Equal(t, data.BookForm{Title: "T", Author: "A", ISBN: "1234567890", Price: "9.5", PublishDate: "2019-05-01"}, v.Form)
	assert.Equal(t, FeedbackInfo, v.Feedback.Kind)
}

func TestLoadForEditNotFoundStaysIdle(t *testing.T) {
	s, _, _ := newTestService(t)

	v, err := s.LoadForEdit(context.Background(), View{}, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.Equal(t, data.Idle, v.State)
	assert.Equal(t, Feedback{Kind: FeedbackError, Message: MsgNotFound}, v.Feedback)
}

func TestLoadForEditOtherFailure(t *testing.T) {
	s, api, _ := newTestService(t)
	api.Fail(http.MethodGet, "/api/books/5", http.StatusInternalServerError)

	v, err := s.LoadForEdit(context.Background(), View{State: data.Editing(2)}, 5)
	require.Error(t, err)
	assert.Equal(t, "load failed: 500", v.Feedback.Message)
	assert.True(t, v.State.Is(2))
}

func TestLoadForEditDiscardsUnsavedEdits(t *testing.T) {
	s, api, _ := newTestService(t)
	seeded := api.Seed(data.Book{Title: "First"}, data.Book{Title: "Second"})

	v, err := s.LoadForEdit(context.Background(), View{}, seeded[0].ID)
	require.NoError(t, err)
	v.Form.Title = "unsaved"

	v, err = s.LoadForEdit(context.Background(), v, seeded[1].ID)
	require.NoError(t, err)
	assert.True(t, v.State.Is(seeded[1].ID))
	assert.Equal(t, "Second", v.Form.Title)
}

func TestSubmitUpdatesWhenEditing(t *testing.T) {
	s, api, _ := newTestService(t)
	seeded := api.Seed(data.Book{Title: "Old", Author: "B", ISBN: "1234567890", Price: price(1), PublishDate: "2020-01-01"})
	id := seeded[0].ID

	v, err := s.LoadForEdit(context.Background(), View{}, id)
	require.NoError(t, err)
	v.Form.Title = "New"

	v, err = s.Submit(context.Background(), v, v.Form)
	require.NoError(t, err)
	assert.Equal(t, data.Idle, v.State)
	assert.True(t, v.Form.IsZero())
	assert.Equal(t, Feedback{Kind: FeedbackSuccess, Message: MsgUpdated}, v.Feedback)

	stored, ok := api.Book(id)
	require.True(t, ok)
	assert.Equal(t, "New", stored.Title)
	assert.Contains(t, methods(api.Requests()), "PUT /api/books/1")
}

func TestUpdateNotFound(t *testing.T) {
	s, _, _ := newTestService(t)

	v, err := s.UpdateBook(context.Background(), View{State: data.Editing(9)}, form())
	require.Error(t, err)
	assert.Equal(t, MsgUpdateNotFound, v.Feedback.Message)
	assert.True(t, v.State.Is(9))
	assert.Equal(t, form(), v.Form)
}

func TestUpdateOtherFailure(t *testing.T) {
	s, api, _ := newTestService(t)
	api.Seed(data.Book{ID: 4, Title: "T"})
	api.Fail(http.MethodPut, "/api/books/4", http.StatusConflict)

	v, err := s.UpdateBook(context.Background(), View{State: data.Editing(4)}, form())
	require.Error(t, err)
	assert.Equal(t, "update failed: 409", v.Feedback.Message)
}

func TestUpdateRequiresEditing(t *testing.T) {
	s, api, _ := newTestService(t)
	v, err := s.UpdateBook(context.Background(), View{}, form())
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.Equal(t, FeedbackError, v.Feedback.Kind)
	assert.Empty(t, api.Requests())
}

func TestDeleteEditedRecordReturnsToIdle(t *testing.T) {
	s, api, _ := newTestService(t)
	seeded := api.Seed(data.Book{Title: "T", Author: "A", ISBN: "1234567890", Price: price(3), PublishDate: "2020-01-01"})
	id := seeded[0].ID

	v, err := s.LoadForEdit(context.Background(), View{}, id)
	require.NoError(t, err)
	require.True(t, v.State.IsEditing())

	var prompt string
	confirm := func(_ context.Context, p string) bool { prompt = p; return true }
	v, err = s.DeleteBook(context.Background(), v, id, confirm)
	require.NoError(t, err)
	assert.Equal(t, "delete book 1?", prompt)
	assert.Equal(t, data.Idle, v.State)
	assert.True(t, v.Form.IsZero())
	assert.Equal(t, Feedback{Kind: FeedbackSuccess, Message: MsgDeleted}, v.Feedback)
	assert.Empty(t, v.Books)
}

func TestDeleteOtherRecordKeepsEditing(t *testing.T) {
	s, api, _ := newTestService(t)
	seeded := api.Seed(data.Book{Title: "One"}, data.Book{Title: "Two"})

	v := View{State: data.Editing(seeded[0].ID), Form: data.BookForm{Title: "draft"}}
	v, err := s.DeleteBook(context.Background(), v, seeded[1].ID, Confirmed)
	require.NoError(t, err)
	assert.True(t, v.State.Is(seeded[0].ID))
	assert.Equal(t, "draft", v.Form.Title)
}

func TestDeleteDeclinedSendsNothing(t *testing.T) {
	s, api, _ := newTestService(t)
	api.Seed(data.Book{Title: "One"})
	before := View{State: data.Editing(1)}

	v, err := s.DeleteBook(context.Background(), before, 1, func(context.Context, string) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, before, v)
	assert.Empty(t, api.Requests())

	v, err = s.DeleteBook(context.Background(), before, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, before, v)
	assert.Empty(t, api.Requests())
}

func TestDeleteFailure(t *testing.T) {
	s, _, _ := newTestService(t)
	v, err := s.DeleteBook(context.Background(), View{State: data.Editing(7)}, 7, Confirmed)
	require.Error(t, err)
	assert.Equal(t, "delete failed: 404", v.Feedback.Message)
	assert.True(t, v.State.Is(7))
}

func TestCancelEdit(t *testing.T) {
	s, _, _ := newTestService(t)
	books := []*data.Book{{ID: 1}}
	v := s.CancelEdit(View{State: data.Editing(3), Form: form(), Feedback: info("x"), Books: books})
	assert.Equal(t, View{Books: books}, v)
}

func TestDispatch(t *testing.T) {
	s, api, _ := newTestService(t)
	api.Seed(data.Book{Title: "One"})
	ctx := context.Background()

	v, err := s.Dispatch(ctx, View{}, RowAction{ID: 1, Action: ActionEdit}, nil)
	require.NoError(t, err)
	assert.True(t, v.State.Is(1))

	v, err = s.Dispatch(ctx, v, RowAction{ID: 1, Action: ActionDelete}, Confirmed)
	require.NoError(t, err)
	assert.Equal(t, data.Idle, v.State)

	_, err = s.Dispatch(ctx, v, RowAction{ID: 1, Action: "archive"}, Confirmed)
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = s.Dispatch(ctx, v, RowAction{ID: 1, Action: ""}, Confirmed)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestActionKnown(t *testing.T) {
	handlers := (&service{}).rowHandlers()
	for _, a := range Actions {
		assert.True(t, a.Known(), a)
		assert.Contains(t, handlers, a)
	}
	for _, a := range []Action{"", "archive", "Edit", "delete "} {
		assert.False(t, a.Known(), a)
	}
}

func TestTransportFailureMessage(t *testing.T) {
	logger := jsonlog.New(&bytes.Buffer{}, jsonlog.LevelOff)
	repo, err := repository.New(clients.NewHTTPClient(time.Second), "http://127.0.0.1:1", logger)
	require.NoError(t, err)
	s := New(logger, repo)

	v, err := s.ListBooks(context.Background(), View{})
	var rerr *RequestError
	require.True(t, errors.As(err, &rerr))
	assert.Zero(t, rerr.Status)
	assert.Contains(t, v.Feedback.Message, "fetch failed: ")
}
