package processor

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/advdv/bhttp"
	"github.com/aws/aws-lambda-go/events"
	"github.com/hijiri0404/cdk-learning-samples/backend/internal/apiresp"
	"github.com/hijiri0404/cdk-learning-samples/cllwa"
	"go.uber.org/zap"
)

// EventPath receives the S3 notifications the Lambda Web Adapter passes through.
const EventPath = "/l/process-upload"

// Response mirrors the result of a plain Lambda invocation.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Register adds the event route to m.
func Register(m *cllwa.Mux, p *Processor) {
	m.HandleFunc("POST "+EventPath, p.Handle, "process-upload")
}

// Handle decodes an S3 event from the request body and processes it.
func (p *Processor) Handle(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	var event events.S3Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		cllwa.Log(ctx).Error("failed to decode S3 event", zap.Error(err))
		return apiresp.InternalError(w, err)
	}

	if err := p.HandleEvent(ctx, event); err != nil {
		cllwa.Log(ctx).Error("error processing event", zap.Error(err))
		return apiresp.InternalError(w, err)
	}

	return apiresp.JSON(w, http.StatusOK, Response{
		StatusCode: http.StatusOK,
		Body:       "Successfully processed files",
	})
}
