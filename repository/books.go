package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/emzola/bookform/data"
	"github.com/emzola/bookform/data/dto"
)

const maxResponseBytes = 1_048_576

type books interface {
	GetAllBooks(ctx context.Context) ([]*data.Book, error)
	GetBook(ctx context.Context, id int64) (*data.Book, error)
	CreateBook(ctx context.Context, body dto.BookRequestBody) (*data.Book, error)
	UpdateBook(ctx context.Context, id int64, body dto.BookRequestBody) (*data.Book, error)
	DeleteBook(ctx context.Context, id int64) error
}

// GetAllBooks retrieves every book record.
func (r *repository) GetAllBooks(ctx context.Context) ([]*data.Book, error) {
	books := []*data.Book{}
	err := r.do(ctx, http.MethodGet, r.collectionURL(), nil, &books)
	if err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook retrieves a book record by its ID.
func (r *repository) GetBook(ctx context.Context, id int64) (*data.Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}
	var book data.Book
	err := r.do(ctx, http.MethodGet, r.recordURL(id), nil, &book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook creates a new book record and returns it with its assigned ID.
func (r *repository) CreateBook(ctx context.Context, body dto.BookRequestBody) (*data.Book, error) {
	var book data.Book
	err := r.do(ctx, http.MethodPost, r.collectionURL(), body, &book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook replaces the editable fields of the book record with the given ID.
func (r *repository) UpdateBook(ctx context.Context, id int64, body dto.BookRequestBody) (*data.Book, error) {
	if id < 1 {
		return nil, ErrRecordNotFound
	}
	var book data.Book
	err := r.do(ctx, http.MethodPut, r.recordURL(id), body, &book)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes the book record with the given ID.
func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	if id < 1 {
		return ErrRecordNotFound
	}
	return r.do(ctx, http.MethodDelete, r.recordURL(id), nil, nil)
}

func (r *repository) collectionURL() string {
	return r.baseURL.JoinPath("api", "books").String()
}

func (r *repository) recordURL(id int64) string {
	return r.baseURL.JoinPath("api", "books", strconv.FormatInt(id, 10)).String()
}

// do sends one request to the book API. A non-nil body is sent as JSON; a
// non-nil dst receives the decoded response. An empty response body leaves dst
// untouched.
func (r *repository) do(ctx context.Context, method, url string, body any, dst any) error {
	var payload io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(js)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := r.client.Do(req)
	if err != nil {
		r.logger.PrintDebug("book API request failed", map[string]string{
			"method": method,
			"url":    url,
			"error":  err.Error(),
		})
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer res.Body.Close()
	r.logger.PrintDebug("book API request", map[string]string{
		"method":   method,
		"url":      url,
		"status":   strconv.Itoa(res.StatusCode),
		"duration": time.Since(start).String(),
	})

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseBytes))
		return &StatusError{Method: method, URL: url, StatusCode: res.StatusCode}
	}
	if dst == nil {
		return nil
	}
	err = json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%s %s: decode response: %w", method, url, err)
	}
	return nil
}
