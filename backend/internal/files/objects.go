package files

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
)

// isoLayout matches ISO 8601 with a numeric offset, e.g. 2025-03-14T09:26:53+00:00.
const isoLayout = "2006-01-02T15:04:05-07:00"

// Object describes one stored file.
type Object struct {
	FileID       string `json:"file_id"`
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
	Status       string `json:"status"`
	Bucket       string `json:"bucket"`
}

// Status values of an Object.
const (
	StatusUploaded  = "uploaded"
	StatusProcessed = "processed"
)

// Bucket labels of an Object.
const (
	BucketUpload    = "upload"
	BucketProcessed = "processed"
)

// listAll returns every object under prefix, following pagination.
func listAll(ctx context.Context, client S3API, bucket, prefix string) ([]types.Object, error) {
	var objects []types.Object
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "list s3://%s/%s", bucket, prefix)
		}
		objects = append(objects, page.Contents...)
	}
	return objects, nil
}

// first returns the first object under prefix, or nil when there is none.
func first(ctx context.Context, client S3API, bucket, prefix string) (*types.Object, error) {
	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list s3://%s/%s", bucket, prefix)
	}
	if len(out.Contents) == 0 {
		return nil, nil
	}
	return &out.Contents[0], nil
}

// fileIDFromKey returns the key segment at index, or "unknown" if the key is shorter.
func fileIDFromKey(key string, index int) string {
	parts := strings.Split(key, "/")
	if len(parts) <= index {
		return "unknown"
	}
	return parts[index]
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(isoLayout)
}

func toObject(obj types.Object, fileID, status, bucket string) Object {
	return Object{
		FileID:       fileID,
		Key:          aws.ToString(obj.Key),
		Size:         aws.ToInt64(obj.Size),
		LastModified: formatTime(obj.LastModified),
		Status:       status,
		Bucket:       bucket,
	}
}
