package files

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/advdv/bhttp"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hijiri0404/cdk-learning-samples/backend/internal/apiresp"
	"github.com/hijiri0404/cdk-learning-samples/cllwa"
	"go.uber.org/zap"
)

// UploadRequest is the body of POST /upload.
type UploadRequest struct {
	Filename    string  `json:"filename" validate:"required"`
	ContentType string  `json:"content_type"`
	FileSize    float64 `json:"file_size" validate:"gte=0"`
}

// DefaultContentType is used when the upload request names none.
const DefaultContentType = "application/octet-stream"

// Handlers serves the file API.
type Handlers struct {
	cfg       Config
	s3        S3API
	presigner Presigner
	validate  *validator.Validate
	now       func() time.Time
	newID     func() string
}

// HandlerOption configures Handlers.
type HandlerOption func(*Handlers)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handlers) { h.now = now }
}

// WithIDGenerator replaces the UUID generator for new file IDs.
func WithIDGenerator(newID func() string) HandlerOption {
	return func(h *Handlers) { h.newID = newID }
}

// NewHandlers creates the file API handlers.
func NewHandlers(cfg Config, client S3API, presigner Presigner, opts ...HandlerOption) *Handlers {
	h := &Handlers{
		cfg:       cfg,
		s3:        client,
		presigner: presigner,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds the file API routes to m.
func Register(m *cllwa.Mux, h *Handlers) {
	m.HandleFunc("POST /upload", h.UploadURL, "upload-url")
	m.HandleFunc("GET /files", h.List, "list-files")
	m.HandleFunc("GET /files/{fileId}", h.Info, "file-info")
	m.HandleFunc("DELETE /files/{fileId}", h.Delete, "delete-file")
	m.HandleFunc("GET /download/{fileId}", h.DownloadURL, "download-url")
	m.HandleFunc("GET /status/{fileId}", h.Status, "file-status")
	m.HandleFunc("/", func(_ context.Context, w bhttp.ResponseWriter, r *http.Request) error {
		return apiresp.NotFound(w, r)
	})
}

// UploadURL validates the requested file and returns a presigned PUT URL for it.
func (h *Handlers) UploadURL(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return apiresp.Error(w, http.StatusInternalServerError, "Internal server error")
	}

	var fields map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err != nil {
			cllwa.Log(ctx).Warn("malformed upload request", zap.Error(err))
			return apiresp.Error(w, http.StatusInternalServerError, "Internal server error")
		}
	}
	if len(fields) == 0 {
		return apiresp.Error(w, http.StatusBadRequest, "Request body required")
	}

	var req UploadRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		cllwa.Log(ctx).Warn("malformed upload request", zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Internal server error")
	}
	if req.Filename == "" {
		return apiresp.Error(w, http.StatusBadRequest, "filename is required")
	}
	if err := h.validate.Struct(req); err != nil || !h.cfg.Validate(req.Filename, req.FileSize) {
		cllwa.Log(ctx).Warn("rejected upload request",
			zap.String("filename", req.Filename), zap.Float64("file_size", req.FileSize))
		return apiresp.Error(w, http.StatusBadRequest, "Invalid file")
	}
	if req.ContentType == "" {
		req.ContentType = DefaultContentType
	}

	fileID := h.newID()
	key := UploadKey(fileID, req.Filename)

	presigned, err := h.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(h.cfg.UploadBucket),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
		Metadata: map[string]string{
			"file-id":           fileID,
			"original-filename": req.Filename,
			"upload-time":       h.now().UTC().Format(isoLayout),
		},
	}, s3.WithPresignExpires(UploadURLExpiry))
	if err != nil {
		cllwa.Log(ctx).Error("failed to presign upload", zap.String("key", key), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to generate upload URL")
	}

	return apiresp.JSON(w, http.StatusOK, map[string]any{
		"upload_url": presigned.URL,
		"file_id":    fileID,
		"file_key":   key,
		"expires_in": int(UploadURLExpiry.Seconds()),
		"instructions": map[string]any{
			"method":  http.MethodPut,
			"headers": map[string]string{"Content-Type": req.ContentType},
		},
	})
}

// List returns every uploaded and processed file.
func (h *Handlers) List(ctx context.Context, w bhttp.ResponseWriter, _ *http.Request) error {
	files := []Object{}

	uploaded, err := listAll(ctx, h.s3, h.cfg.UploadBucket, UploadPrefix)
	if err != nil {
		cllwa.Log(ctx).Error("failed to list uploads", zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to list files")
	}
	for _, obj := range uploaded {
		files = append(files, toObject(obj, fileIDFromKey(aws.ToString(obj.Key), 1), StatusUploaded, BucketUpload))
	}

	processed, err := listAll(ctx, h.s3, h.cfg.ProcessedBucket, ProcessedPrefix)
	if err != nil {
		cllwa.Log(ctx).Error("failed to list processed files", zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to list files")
	}
	for _, obj := range processed {
		files = append(files, toObject(obj, fileIDFromKey(aws.ToString(obj.Key), 2), StatusProcessed, BucketProcessed))
	}

	return apiresp.JSON(w, http.StatusOK, map[string]any{
		"files": files,
		"count": len(files),
	})
}

// Info describes a file, preferring the upload over the processed copy.
func (h *Handlers) Info(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	fileID := r.PathValue("fileId")

	sources := []struct {
		bucket, prefix, status, label string
	}{
		{h.cfg.UploadBucket, uploadDir(fileID), StatusUploaded, BucketUpload},
		{h.cfg.ProcessedBucket, processedDir(fileID), StatusProcessed, BucketProcessed},
	}
	for _, src := range sources {
		obj, err := first(ctx, h.s3, src.bucket, src.prefix)
		if err != nil {
			cllwa.Log(ctx).Error("failed to look up file", zap.String("file_id", fileID), zap.Error(err))
			return apiresp.Error(w, http.StatusInternalServerError, "Failed to get file info")
		}
		if obj == nil {
			continue
		}

		head, err := h.s3.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(src.bucket),
			Key:    obj.Key,
		})
		if err != nil {
			cllwa.Log(ctx).Error("failed to head file", zap.String("key", aws.ToString(obj.Key)), zap.Error(err))
			return apiresp.Error(w, http.StatusInternalServerError, "Failed to get file info")
		}

		metadata := head.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		return apiresp.JSON(w, http.StatusOK, map[string]any{
			"file_id":       fileID,
			"key":           aws.ToString(obj.Key),
			"size":          aws.ToInt64(obj.Size),
			"last_modified": formatTime(obj.LastModified),
			"content_type":  head.ContentType,
			"metadata":      metadata,
			"status":        src.status,
			"bucket":        src.label,
		})
	}

	return apiresp.Error(w, http.StatusNotFound, fmt.Sprintf("File %s not found", fileID))
}

// DownloadURL returns a presigned GET URL for the processed copy of a file.
func (h *Handlers) DownloadURL(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	fileID := r.PathValue("fileId")

	obj, err := first(ctx, h.s3, h.cfg.ProcessedBucket, processedDir(fileID))
	if err != nil {
		cllwa.Log(ctx).Error("failed to look up processed file", zap.String("file_id", fileID), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to generate download URL")
	}
	if obj == nil {
		return apiresp.Error(w, http.StatusNotFound, "File not found or not processed yet")
	}

	presigned, err := h.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(h.cfg.ProcessedBucket),
		Key:    obj.Key,
	}, s3.WithPresignExpires(DownloadURLExpiry))
	if err != nil {
		cllwa.Log(ctx).Error("failed to presign download", zap.String("file_id", fileID), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to generate download URL")
	}

	return apiresp.JSON(w, http.StatusOK, map[string]any{
		"download_url": presigned.URL,
		"file_id":      fileID,
		"expires_in":   int(DownloadURLExpiry.Seconds()),
	})
}

// Delete removes the upload and every processed copy of a file.
func (h *Handlers) Delete(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	fileID := r.PathValue("fileId")

	deleted := []string{}
	sources := []struct {
		bucket, prefix, label string
	}{
		{h.cfg.UploadBucket, uploadDir(fileID), BucketUpload},
		{h.cfg.ProcessedBucket, processedDir(fileID), BucketProcessed},
	}
	for _, src := range sources {
		objects, err := listAll(ctx, h.s3, src.bucket, src.prefix)
		if err != nil {
			cllwa.Log(ctx).Error("failed to list file objects", zap.String("file_id", fileID), zap.Error(err))
			return apiresp.Error(w, http.StatusInternalServerError, "Failed to delete file")
		}
		for _, obj := range objects {
			if _, err := h.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(src.bucket),
				Key:    obj.Key,
			}); err != nil {
				cllwa.Log(ctx).Error("failed to delete object", zap.String("key", aws.ToString(obj.Key)), zap.Error(err))
				return apiresp.Error(w, http.StatusInternalServerError, "Failed to delete file")
			}
			deleted = append(deleted, src.label+":"+aws.ToString(obj.Key))
		}
	}

	if len(deleted) == 0 {
		return apiresp.Error(w, http.StatusNotFound, "File not found")
	}

	cllwa.Log(ctx).Info("file deleted", zap.String("file_id", fileID), zap.Strings("objects", deleted))
	return apiresp.JSON(w, http.StatusOK, map[string]any{
		"message":       fmt.Sprintf("File %s deleted successfully", fileID),
		"deleted_files": deleted,
	})
}

// Processing states reported by Status.
const (
	ProcessingCompleted = "completed"
	ProcessingPending   = "processing"
	ProcessingNotFound  = "not_found"
)

// Status reports whether a file has been processed yet.
func (h *Handlers) Status(ctx context.Context, w bhttp.ResponseWriter, r *http.Request) error {
	fileID := r.PathValue("fileId")

	uploaded, err := first(ctx, h.s3, h.cfg.UploadBucket, uploadDir(fileID))
	if err != nil {
		cllwa.Log(ctx).Error("failed to check upload", zap.String("file_id", fileID), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to check processing status")
	}
	processed, err := first(ctx, h.s3, h.cfg.ProcessedBucket, processedDir(fileID))
	if err != nil {
		cllwa.Log(ctx).Error("failed to check processed copy", zap.String("file_id", fileID), zap.Error(err))
		return apiresp.Error(w, http.StatusInternalServerError, "Failed to check processing status")
	}

	status, message := ProcessingNotFound, "File not found"
	switch {
	case processed != nil:
		status, message = ProcessingCompleted, "File processing completed"
	case uploaded != nil:
		status, message = ProcessingPending, "File is being processed"
	}

	return apiresp.JSON(w, http.StatusOK, map[string]any{
		"file_id": fileID,
		"status":  status,
		"message": message,
	})
}
