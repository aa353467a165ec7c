package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/emzola/bookform/service"
	"github.com/julienschmidt/httprouter"
)

func (h *Handler) showFormHandler(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, service.View{}, nil)
}

func (h *Handler) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	v, _, err := h.readView(w, r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	v, err = h.service.ListBooks(r.Context(), v)
	h.renderPage(w, r, v, err)
}

func (h *Handler) submitBookHandler(w http.ResponseWriter, r *http.Request) {
	v, listed, err := h.readView(w, r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	v, err = h.service.Submit(r.Context(), v, v.Form)
	h.renderPage(w, r, h.restoreList(r.Context(), v, listed), err)
}

// rowActionHandler runs the edit or delete action of one list row. A delete
// posted without an answer renders the confirmation page; the answer comes
// back as confirm=yes or confirm=no.
func (h *Handler) rowActionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := h.readIDParam(r, "id")
	if err != nil || id < 1 {
		h.notFoundResponse(w, r)
		return
	}
	v, listed, err := h.readView(w, r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	answer := r.Form.Get("confirm")
	var prompt string
	confirm := func(_ context.Context, p string) bool {
		prompt = p
		return answer == "yes"
	}
	action := service.RowAction{
		ID:     id,
		Action: service.Action(httprouter.ParamsFromContext(r.Context()).ByName("action")),
	}
	next, err := h.service.Dispatch(r.Context(), v, action, confirm)
	if prompt != "" && answer == "" {
		v.Loaded = listed
		h.renderConfirm(w, r, v, id, prompt)
		return
	}
	h.renderPage(w, r, h.restoreList(r.Context(), next, listed), err)
}

func (h *Handler) cancelEditHandler(w http.ResponseWriter, r *http.Request) {
	v, listed, err := h.readView(w, r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	v = h.service.CancelEdit(v)
	h.renderPage(w, r, h.restoreList(r.Context(), v, listed), nil)
}

// restoreList refetches the list for pages that showed one when the operation
// itself did not refresh it. Feedback of the operation is kept.
func (h *Handler) restoreList(ctx context.Context, v service.View, listed bool) service.View {
	if !listed || v.Loaded {
		return v
	}
	fresh, err := h.service.ListBooks(ctx, v)
	if err != nil {
		return v
	}
	v.Books = fresh.Books
	v.Loaded = true
	return v
}

// pageStatus maps the outcome of an operation to the status of the page
// reporting it.
func pageStatus(err error) int {
	var rerr *service.RequestError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrFailedValidation):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rerr):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, v service.View, opErr error) {
	buf := new(bytes.Buffer)
	if err := h.ui.RenderPage(buf, v); err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	h.writeHTML(w, pageStatus(opErr), buf)
}

func (h *Handler) renderConfirm(w http.ResponseWriter, r *http.Request, v service.View, id int64, prompt string) {
	buf := new(bytes.Buffer)
	if err := h.ui.RenderConfirm(buf, v, id, prompt); err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	h.writeHTML(w, http.StatusOK, buf)
}

func (h *Handler) writeHTML(w http.ResponseWriter, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
