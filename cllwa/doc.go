// Package cllwa runs the repository's Lambda functions as plain HTTP services
// behind AWS Lambda Web Adapter (LWA).
//
// # Overview
//
// cllwa sets up environment parsing, structured logging, OpenTelemetry tracing,
// AWS SDK clients and graceful shutdown. A complete function is a single call:
//
//	cllwa.NewApp[Env](func(m *cllwa.Mux, h *items.Handlers) {
//	    m.HandleFunc("GET /items", h.List)
//	    m.HandleFunc("GET /items/{id}", h.Get, "get-item")
//	},
//	    cllwa.WithAWSClient(dynamodb.NewFromConfig),
//	    cllwa.WithFx(fx.Provide(items.NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    cllwa.BaseEnvironment
//	    TableName string `env:"TABLE_NAME,required"`
//	}
//
// BaseEnvironment reads these variables, all of which clcdklwalambda sets:
//
//	| Variable                      | Required | Default | Description                                  |
//	|-------------------------------|----------|---------|----------------------------------------------|
//	| AWS_LWA_PORT                  | Yes      | -       | Port the HTTP server listens on              |
//	| AWS_LWA_READINESS_CHECK_PATH  | Yes      | -       | Health check endpoint path for LWA readiness |
//	| CLS_SERVICE_NAME              | Yes      | -       | Service name for logging and tracing         |
//	| CLS_LOG_LEVEL                 | No       | info    | Log level (debug, info, warn, error)         |
//	| CLS_OTEL_EXPORTER             | No       | stdout  | Trace exporter: "stdout" or "xrayudp"        |
//	| CLS_ENVIRONMENT               | No       | dev     | Deployment environment (dev, stg, prod)      |
//
// # Context Functions
//
// Dependencies such as AWS clients and the environment are injected into handler
// constructors by fx. Per request, handlers read from the context:
//
//   - [Log] returns the request logger with trace_id, span_id and request_id
//   - [Span] returns the current OpenTelemetry span
//   - [LWA] returns the Lambda invocation context (request ID, deadline)
//
// # Non-HTTP Events
//
// LWA delivers events that do not look like HTTP requests (S3 notifications) as a
// POST of the raw event JSON to AWS_LWA_PASS_THROUGH_PATH. Register a handler for
// that path like any other route:
//
//	m.HandleFunc("POST /l/process-upload", h.ProcessUpload)
//
// # Health Checks
//
// A handler is registered at AWS_LWA_READINESS_CHECK_PATH. Customize it with
// [WithHealthHandler].
package cllwa
