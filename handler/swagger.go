package handler

import (
	_ "embed"
	"net/http"
)

// bookAPIDoc describes the remote book API this server talks to.
//
//go:embed docs/swagger.json
var bookAPIDoc []byte

func (h *Handler) handleSwaggerFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(bookAPIDoc)
	}
}
