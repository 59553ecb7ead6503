// Package files implements the file upload API: presigned upload and download URLs,
// listing, inspection, deletion and processing status of uploaded files.
package files

import (
	"path"
	"strings"
)

// Key prefixes used in the upload and processed buckets.
const (
	UploadPrefix     = "uploads/"
	ProcessedPrefix  = "processed/"
	QuarantinePrefix = "quarantine/"
)

// Config holds the settings shared by the API and the processor.
type Config struct {
	UploadBucket     string   `env:"UPLOAD_BUCKET,required"`
	ProcessedBucket  string   `env:"PROCESSED_BUCKET,required"`
	MaxFileSizeMB    int64    `env:"MAX_FILE_SIZE_MB" envDefault:"10"`
	AllowedFileTypes []string `env:"ALLOWED_FILE_TYPES" envDefault:".jpg,.png,.pdf" envSeparator:","`
}

// MaxFileSizeBytes is the size limit in bytes.
func (c Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// AllowedExtension reports whether name has one of the allowed extensions,
// compared case-insensitively.
func (c Config) AllowedExtension(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, allowed := range c.AllowedFileTypes {
		if ext == strings.ToLower(strings.TrimSpace(allowed)) {
			return true
		}
	}
	return false
}

// Validate reports whether a file with this name and size in bytes may be stored.
// Clients may report fractional sizes.
func (c Config) Validate(name string, size float64) bool {
	return c.AllowedExtension(name) && size <= float64(c.MaxFileSizeBytes())
}

// UploadKey is the object key of an uploaded file.
func UploadKey(fileID, filename string) string {
	return UploadPrefix + fileID + "/" + filename
}

// ProcessedKey is where the processor stores a file uploaded under uploadKey.
func ProcessedKey(uploadKey string) string {
	return ProcessedPrefix + uploadKey
}

// QuarantineKey is where a rejected file ends up in the upload bucket.
func QuarantineKey(uploadKey string) string {
	return QuarantinePrefix + uploadKey
}

func uploadDir(fileID string) string {
	return UploadPrefix + fileID + "/"
}

func processedDir(fileID string) string {
	return ProcessedKey(uploadDir(fileID))
}
