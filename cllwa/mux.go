package cllwa

import (
	"context"
	"net/http"

	"github.com/advdv/bhttp"
)

// Mux is an alias for bhttp.ServeMux with standard context.
type Mux = bhttp.ServeMux[context.Context]

// HandlerFunc is the signature of handlers registered on a Mux.
type HandlerFunc = func(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error

// NewMux creates a new Mux with unlimited response buffering.
func NewMux() *Mux {
	logger := bhttp.NewStdLogger(nil)
	return bhttp.NewCustomServeMux(
		bhttp.StdContextInit,
		-1,
		logger,
		http.NewServeMux(),
		bhttp.NewReverser(),
	)
}
