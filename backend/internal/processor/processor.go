// Package processor moves uploaded files out of the upload bucket once S3 reports
// them. Valid files end up in the processed bucket, everything else is quarantined
// next to the upload.
package processor

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
	"github.com/hijiri0404/cdk-learning-samples/backend/internal/files"
	"github.com/hijiri0404/cdk-learning-samples/cllwa"
	"go.uber.org/zap"
)

// ProcessedBy is stamped on every object the processor writes.
const ProcessedBy = "file-upload-system"

// Config holds the processor settings.
type Config struct {
	files.Config

	EnableVirusScan    bool   `env:"ENABLE_VIRUS_SCAN" envDefault:"false"`
	EnableImageResize  bool   `env:"ENABLE_IMAGE_RESIZE" envDefault:"true"`
	ProcessingQueueURL string `env:"PROCESSING_QUEUE_URL"`
}

// Processor handles S3 object events for the upload bucket.
type Processor struct {
	cfg       Config
	s3        files.S3API
	publisher *Publisher
}

// New creates a Processor. The publisher may be nil. logger only receives
// configuration warnings, request logs go through [cllwa.Log].
func New(cfg Config, client files.S3API, publisher *Publisher, logger *zap.Logger) *Processor {
	if cfg.EnableVirusScan {
		logger.Warn("ENABLE_VIRUS_SCAN is set but no scanner is configured, files are not scanned")
	}
	return &Processor{cfg: cfg, s3: client, publisher: publisher}
}

// HandleEvent processes every S3 record of event. Records from other sources are
// ignored. A failing record does not stop the others; their errors are joined.
func (p *Processor) HandleEvent(ctx context.Context, event events.S3Event) error {
	var errs []error
	for _, record := range event.Records {
		if record.EventSource != "aws:s3" {
			continue
		}
		if err := p.handleRecord(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Processor) handleRecord(ctx context.Context, record events.S3EventRecord) error {
	bucket, key := record.S3.Bucket.Name, DecodeKey(record.S3.Object.Key)

	logger := cllwa.Log(ctx).With(
		zap.String("event", record.EventName), zap.String("bucket", bucket), zap.String("key", key))
	if lc := cllwa.LWA(ctx); lc != nil {
		logger = logger.With(zap.Duration("remaining", lc.RemainingTime()))
	}
	ctx = cllwa.WithLogger(ctx, logger)
	logger.Info("processing event")

	switch {
	case strings.HasPrefix(record.EventName, "ObjectCreated"):
		result, err := p.ProcessUpload(ctx, bucket, key)
		if err != nil {
			return err
		}
		// the file has already moved, a retry would not find it again
		if err := p.publisher.Publish(ctx, result); err != nil {
			logger.Error("failed to publish processing event", zap.Error(err))
		}
	case strings.HasPrefix(record.EventName, "ObjectRemoved"):
		logger.Info("file removed")
	}
	return nil
}

// DecodeKey undoes the form encoding of object keys in S3 events: '+' is a space
// and %XX an escaped byte. A '%' not followed by two hex digits is kept as is.
func DecodeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

// ProcessUpload validates and moves one uploaded object. Validation and processing
// failures quarantine the object and are reported in the Result. An object that no
// longer exists, because an earlier delivery of the event already moved it, yields
// a nil Result. An error is only returned when the object could not be quarantined.
func (p *Processor) ProcessUpload(ctx context.Context, bucket, key string) (*Result, error) {
	logger := cllwa.Log(ctx)

	dest, err := p.process(ctx, logger, bucket, key)
	switch {
	case errors.Is(err, errObjectGone):
		logger.Info("object no longer exists, skipping")
		return nil, nil
	case errors.Is(err, errInvalidFile):
		return p.quarantine(ctx, logger, bucket, key, "Validation failed")
	case err != nil:
		logger.Error("failed to process file", zap.Error(err))
		return p.quarantine(ctx, logger, bucket, key, "Processing error: "+err.Error())
	}

	return &Result{
		Outcome:           OutcomeProcessed,
		Bucket:            bucket,
		Key:               key,
		DestinationBucket: p.cfg.ProcessedBucket,
		DestinationKey:    dest,
	}, nil
}

var (
	errInvalidFile = errors.New("invalid file")
	errObjectGone  = errors.New("object gone")
)

func (p *Processor) process(ctx context.Context, logger *zap.Logger, bucket, key string) (string, error) {
	head, err := p.s3.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if notFound := (*types.NotFound)(nil); errors.As(err, &notFound) {
		return "", errObjectGone
	}
	if err != nil {
		return "", errors.Wrap(err, "head object")
	}

	size, contentType := aws.ToInt64(head.ContentLength), aws.ToString(head.ContentType)
	logger.Info("file info", zap.Int64("size", size), zap.String("content_type", contentType))

	if size > p.cfg.MaxFileSizeBytes() {
		logger.Warn("file too large", zap.Int64("size", size), zap.Int64("max", p.cfg.MaxFileSizeBytes()))
		return "", errInvalidFile
	}
	if !p.cfg.AllowedExtension(key) {
		logger.Warn("invalid file type")
		return "", errInvalidFile
	}

	dest := files.ProcessedKey(key)
	if strings.HasPrefix(contentType, "image/") && p.cfg.EnableImageResize {
		err = p.processImage(ctx, bucket, key, dest)
	} else {
		err = p.moveToProcessed(ctx, bucket, key, dest)
	}
	if err != nil {
		return "", err
	}

	logger.Info("file processed", zap.String("destination", dest))
	return dest, nil
}

func (p *Processor) processedMetadata(key string) map[string]string {
	return map[string]string{
		"original-key":      key,
		"processed-by":      ProcessedBy,
		"processing-status": "completed",
	}
}

// processImage rewrites the image into the processed bucket. Resizing is not
// implemented, the bytes are stored unchanged.
func (p *Processor) processImage(ctx context.Context, bucket, key, dest string) error {
	obj, err := p.s3.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return errors.Wrap(err, "get image")
	}
	defer obj.Body.Close()

	body, err := io.ReadAll(obj.Body)
	if err != nil {
		return errors.Wrap(err, "read image")
	}

	contentType := aws.ToString(obj.ContentType)
	if contentType == "" {
		contentType = files.DefaultContentType
	}

	if _, err := p.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.cfg.ProcessedBucket),
		Key:         aws.String(dest),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata:    p.processedMetadata(key),
	}); err != nil {
		return errors.Wrap(err, "put processed image")
	}

	return p.deleteOriginal(ctx, bucket, key)
}

func (p *Processor) moveToProcessed(ctx context.Context, bucket, key, dest string) error {
	if _, err := p.s3.CopyObject(ctx, &s3.CopyObjectInput{
		CopySource:        aws.String(copySource(bucket, key)),
		Bucket:            aws.String(p.cfg.ProcessedBucket),
		Key:               aws.String(dest),
		MetadataDirective: types.MetadataDirectiveReplace,
		Metadata:          p.processedMetadata(key),
	}); err != nil {
		return errors.Wrap(err, "copy to processed bucket")
	}
	return p.deleteOriginal(ctx, bucket, key)
}

func (p *Processor) quarantine(
	ctx context.Context, logger *zap.Logger, bucket, key, reason string,
) (*Result, error) {
	dest := files.QuarantineKey(key)
	if _, err := p.s3.CopyObject(ctx, &s3.CopyObjectInput{
		CopySource:        aws.String(copySource(bucket, key)),
		Bucket:            aws.String(bucket),
		Key:               aws.String(dest),
		MetadataDirective: types.MetadataDirectiveReplace,
		Metadata: map[string]string{
			"quarantine-reason": reason,
			"original-key":      key,
			"quarantined-by":    ProcessedBy,
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "quarantine %q", key)
	}
	if err := p.deleteOriginal(ctx, bucket, key); err != nil {
		return nil, errors.Wrapf(err, "quarantine %q", key)
	}

	logger.Warn("file quarantined", zap.String("reason", reason))
	return &Result{
		Outcome:           OutcomeQuarantined,
		Bucket:            bucket,
		Key:               key,
		DestinationBucket: bucket,
		DestinationKey:    dest,
		Reason:            reason,
	}, nil
}

func (p *Processor) deleteOriginal(ctx context.Context, bucket, key string) error {
	if _, err := p.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return errors.Wrap(err, "delete original")
	}
	return nil
}

// copySource is the URL-encoded "bucket/key" CopyObject expects.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

// Outcomes of processing an upload.
const (
	OutcomeProcessed   = "processed"
	OutcomeQuarantined = "quarantined"
)

// Result describes where an upload ended up. It is the body of the processing
// event sent to the queue.
type Result struct {
	Outcome           string    `json:"outcome"`
	Bucket            string    `json:"bucket"`
	Key               string    `json:"key"`
	DestinationBucket string    `json:"destination_bucket"`
	DestinationKey    string    `json:"destination_key"`
	Reason            string    `json:"reason,omitempty"`
	ProcessedAt       time.Time `json:"processed_at"`
}
