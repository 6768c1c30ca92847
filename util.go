package restspec

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func P[T any](v T) *T {
	return &v
}

func requestWithParams(r *http.Request, ps httprouter.Params) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), httprouter.ParamsKey, ps))
}
