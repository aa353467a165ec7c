// Package bookapitest provides an in-memory book API served over httptest,
// for exercising the client side of the book API in tests.
package bookapitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/emzola/bookform/data"
	"github.com/emzola/bookform/data/dto"
	"github.com/julienschmidt/httprouter"
)

// Request is one call received by the fake API.
type Request struct {
	Method string
	Path   string
	Body   *dto.BookRequestBody
}

// Server is a fake book API. It is safe for concurrent use.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	books    map[int64]data.Book
	nextID   int64
	requests []Request
	failures map[string]int
}

// NewServer starts a fake book API that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{
		books:    make(map[int64]data.Book),
		nextID:   1,
		failures: make(map[string]int),
	}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/api/books", s.list)
	router.HandlerFunc(http.MethodPost, "/api/books", s.create)
	router.HandlerFunc(http.MethodGet, "/api/books/:id", s.show)
	router.HandlerFunc(http.MethodPut, "/api/books/:id", s.update)
	router.HandlerFunc(http.MethodDelete, "/api/books/:id", s.remove)

	s.Server = httptest.NewServer(s.record(router))
	t.Cleanup(s.Close)
	return s
}

// Seed stores books, assigning ids to those without one, and returns them as stored.
func (s *Server) Seed(books ...data.Book) []data.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]data.Book, 0, len(books))
	for _, b := range books {
		if b.ID == 0 {
			b.ID = s.nextID
		}
		if b.ID >= s.nextID {
			s.nextID = b.ID + 1
		}
		s.books[b.ID] = b
		out = append(out, b)
	}
	return out
}

// Fail makes every request matching method and path answer with status.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = status
}

// Requests returns the calls received so far, in order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Book returns the stored record with the given id.
func (s *Server) Book(id int64) (data.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	return b, ok
}

// Len returns the number of stored records.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := Request{Method: r.Method, Path: r.URL.Path}
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			var body dto.BookRequestBody
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			req.Body = &body
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		status, fail := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if fail {
			http.Error(w, http.StatusText(status), status)
			return
		}
		r = r.WithContext(withBody(r.Context(), req.Body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	books := make([]data.Book, 0, len(s.books))
	for _, b := range s.books {
		books = append(books, b)
	}
	s.mu.Unlock()
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	writeJSON(w, http.StatusOK, books)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	body := bodyFrom(r.Context())
	s.mu.Lock()
	b := fromBody(s.nextID, body)
	s.books[b.ID] = b
	s.nextID++
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) show(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(r)
	s.mu.Lock()
	b, found := s.books[id]
	s.mu.Unlock()
	if !ok || !found {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(r)
	s.mu.Lock()
	_, found := s.books[id]
	var b data.Book
	if found {
		b = fromBody(id, bodyFrom(r.Context()))
		s.books[id] = b
	}
	s.mu.Unlock()
	if !ok || !found {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := readID(r)
	s.mu.Lock()
	_, found := s.books[id]
	delete(s.books, id)
	s.mu.Unlock()
	if !ok || !found {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func fromBody(id int64, body *dto.BookRequestBody) data.Book {
	price := body.Price
	return data.Book{
		ID:          id,
		Title:       body.Title,
		Author:      body.Author,
		ISBN:        body.ISBN,
		Price:       &price,
		PublishDate: body.PublishDate,
	}
}

func readID(r *http.Request) (int64, bool) {
	params := httprouter.ParamsFromContext(r.Context())
	id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
	return id, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
