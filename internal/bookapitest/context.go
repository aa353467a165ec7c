package bookapitest

import (
	"context"

	"github.com/emzola/bookform/data/dto"
)

type contextKey string

const bodyContextKey = contextKey("body")

// withBody stores the already decoded request body, since record consumes r.Body.
func withBody(ctx context.Context, body *dto.BookRequestBody) context.Context {
	return context.WithValue(ctx, bodyContextKey, body)
}

func bodyFrom(ctx context.Context) *dto.BookRequestBody {
	body, ok := ctx.Value(bodyContextKey).(*dto.BookRequestBody)
	if !ok || body == nil {
		return &dto.BookRequestBody{}
	}
	return body
}
