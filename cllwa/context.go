package cllwa

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/advdv/bhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// lwaContextHeader carries the invocation context LWA forwards with every request.
const lwaContextHeader = "x-amzn-lambda-context"

type ctxKey int

const (
	ctxKeyLogger ctxKey = iota
	ctxKeyLWAContext
)

// LWAContext is the decoded x-amzn-lambda-context header.
type LWAContext struct {
	RequestID          string       `json:"request_id"`
	Deadline           int64        `json:"deadline"`
	InvokedFunctionARN string       `json:"invoked_function_arn"`
	XRayTraceID        string       `json:"xray_trace_id"`
	EnvConfig          LWAEnvConfig `json:"env_config"`
}

// LWAEnvConfig describes the invoked function.
type LWAEnvConfig struct {
	FunctionName string `json:"function_name"`
	Memory       int    `json:"memory"`
	Version      string `json:"version"`
	LogGroup     string `json:"log_group"`
	LogStream    string `json:"log_stream"`
}

// DeadlineTime is the zero time when no deadline was sent.
func (lc *LWAContext) DeadlineTime() time.Time {
	if lc.Deadline == 0 {
		return time.Time{}
	}
	return time.UnixMilli(lc.Deadline)
}

// RemainingTime until the invocation times out, never negative.
func (lc *LWAContext) RemainingTime() time.Duration {
	if lc.Deadline == 0 {
		return 0
	}
	return max(time.Until(lc.DeadlineTime()), 0)
}

func parseLWAContext(header string) *LWAContext {
	if header == "" {
		return nil
	}
	var lc LWAContext
	if err := json.Unmarshal([]byte(header), &lc); err != nil {
		return nil
	}
	return &lc
}

// RequestLogging puts a request logger derived from logger into the context of
// every request. It carries trace_id and span_id of the server span, the Lambda
// request_id when LWA forwarded one, and the method and path. NewApp installs it
// on the app's Mux.
func RequestLogging(logger *zap.Logger) bhttp.Middleware {
	return func(next bhttp.BareHandler) bhttp.BareHandler {
		return bhttp.BareHandlerFunc(func(w bhttp.ResponseWriter, r *http.Request) error {
			ctx := r.Context()
			fields := append(traceFields(ctx),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path))

			if lc := parseLWAContext(r.Header.Get(lwaContextHeader)); lc != nil {
				ctx = context.WithValue(ctx, ctxKeyLWAContext, lc)
				fields = append(fields, zap.String("request_id", lc.RequestID))
			}

			ctx = WithLogger(ctx, logger.With(fields...))
			return next.ServeBareBHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithLogger returns a copy of ctx whose [Log] is logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, logger)
}

// Log returns the request logger. Outside a request it is a no-op logger.
func Log(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(ctxKeyLogger).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// LWA is nil when the request did not come through the Lambda Web Adapter.
func LWA(ctx context.Context) *LWAContext {
	lc, _ := ctx.Value(ctxKeyLWAContext).(*LWAContext)
	return lc
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
