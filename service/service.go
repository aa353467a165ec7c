package service

import (
	"time"

	"github.com/emzola/bookform/internal/jsonlog"
	"github.com/emzola/bookform/repository"
)

type Service interface {
	books
}

// service defines the service layer: the form controller that sits between a
// front end and the book API.
type service struct {
	logger *jsonlog.Logger
	repo   repository.Repository
	now    func() time.Time
}

// Option configures a service.
type Option func(*service)

// WithClock replaces the wall clock used to judge publish dates.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new instance of Service.
func New(logger *jsonlog.Logger, repo repository.Repository, opts ...Option) *service {
	s := &service{
		logger: logger,
		repo:   repo,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
