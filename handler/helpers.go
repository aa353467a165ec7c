package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/emzola/bookform/data"
	"github.com/emzola/bookform/service"
	"github.com/julienschmidt/httprouter"
)

type envelope map[string]interface{}

// readIDParam pulls the url id parameter from the request and returns it or an error if any.
func (h *Handler) readIDParam(r *http.Request, name string) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// encodeJSON serializes data to JSON and writes the appropriate HTTP status code and headers if necessary.
func (h *Handler) encodeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')
	for k, v := range headers {
		w.Header()[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
	return nil
}

// readView rebuilds the page state posted by the browser: the edit state from
// the hidden editing_id field and the raw form values. listed reports whether
// the page showing the form also showed the book list.
func (h *Handler) readView(w http.ResponseWriter, r *http.Request) (v service.View, listed bool, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	if err := r.ParseForm(); err != nil {
		return v, false, err
	}
	v.State, err = data.ParseEditState(r.Form.Get("editing_id"))
	if err != nil {
		return v, false, err
	}
	v.Form = data.BookForm{
		Title:       r.Form.Get("title"),
		Author:      r.Form.Get("author"),
		ISBN:        r.Form.Get("isbn"),
		Price:       r.Form.Get("price"),
		PublishDate: r.Form.Get("publishDate"),
	}
	return v, r.Form.Get("listed") == "1", nil
}
