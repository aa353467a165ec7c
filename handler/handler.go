package handler

import (
	"github.com/emzola/bookform/config"
	"github.com/emzola/bookform/internal/jsonlog"
	"github.com/emzola/bookform/internal/ui"
	"github.com/emzola/bookform/service"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

// Handler defines Handler layer.
type Handler struct {
	config   config.Config
	logger   *jsonlog.Logger
	limiters *ttlcache.Cache[string, *rate.Limiter]
	loader   ttlcache.Loader[string, *rate.Limiter]
	service  service.Service
	ui       *ui.Renderer
}

// New creates a new instance of Handler. limiters holds one rate limiter per
// client IP; entries expire with the cache's TTL.
func New(cfg config.Config, logger *jsonlog.Logger, limiters *ttlcache.Cache[string, *rate.Limiter], service service.Service, renderer *ui.Renderer) *Handler {
	h := &Handler{
		config:   cfg,
		logger:   logger,
		limiters: limiters,
		service:  service,
		ui:       renderer,
	}
	h.loader = ttlcache.NewSuppressedLoader[string, *rate.Limiter](ttlcache.LoaderFunc[string, *rate.Limiter](h.newLimiter), nil)
	return h
}

func (h *Handler) newLimiter(c *ttlcache.Cache[string, *rate.Limiter], ip string) *ttlcache.Item[string, *rate.Limiter] {
	limiter := rate.NewLimiter(rate.Limit(h.config.Limiter.RPS), h.config.Limiter.Burst)
	return c.Set(ip, limiter, ttlcache.DefaultTTL)
}
