// Package filestest provides an in-memory S3 for testing the file handlers and
// the processor.
package filestest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
)

// Object is a stored object.
type Object struct {
	Body         []byte
	ContentType  string
	Metadata     map[string]string
	LastModified time.Time
}

// S3 is an in-memory implementation of files.S3API and files.Presigner.
type S3 struct {
	mu      sync.Mutex
	buckets map[string]map[string]*Object

	// PageSize limits ListObjectsV2 pages so tests exercise pagination.
	PageSize int
	// Now stamps LastModified on written objects.
	Now func() time.Time
	// Fail makes the named operation (e.g. "HeadObject") return an error.
	Fail map[string]error
	// Presigned records the options of the last presign call.
	PresignExpires time.Duration
	PresignedPut   *s3.PutObjectInput
}

// New creates an empty S3.
func New() *S3 {
	return &S3{
		buckets:  map[string]map[string]*Object{},
		PageSize: 1000,
		Now:      func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) },
		Fail:     map[string]error{},
	}
}

// Put stores an object directly.
func (f *S3) Put(bucket, key string, obj Object) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if obj.LastModified.IsZero() {
		obj.LastModified = f.Now()
	}
	f.bucket(bucket)[key] = &obj
}

// Get returns a stored object.
func (f *S3) Get(bucket, key string) (Object, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.bucket(bucket)[key]
	if !ok {
		return Object{}, false
	}
	return *obj, true
}

// Keys returns the sorted keys stored in bucket.
func (f *S3) Keys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Sorted(maps.Keys(f.bucket(bucket)))
}

func (f *S3) bucket(name string) map[string]*Object {
	b, ok := f.buckets[name]
	if !ok {
		b = map[string]*Object{}
		f.buckets[name] = b
	}
	return b
}

func (f *S3) fail(op string) error {
	if err, ok := f.Fail[op]; ok {
		return err
	}
	return nil
}

func notFound(bucket, key string) error {
	return &types.NoSuchKey{Message: aws.String(fmt.Sprintf("s3://%s/%s", bucket, key))}
}

func (f *S3) ListObjectsV2(
	_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	if err := f.fail("ListObjectsV2"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix := aws.ToString(in.Prefix)
	start := aws.ToString(in.ContinuationToken)

	var keys []string
	for _, key := range slices.Sorted(maps.Keys(f.bucket(aws.ToString(in.Bucket)))) {
		if strings.HasPrefix(key, prefix) && key > start {
			keys = append(keys, key)
		}
	}

	out := &s3.ListObjectsV2Output{}
	if len(keys) > f.PageSize {
		keys = keys[:f.PageSize]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[len(keys)-1])
	}
	for _, key := range keys {
		obj := f.bucket(aws.ToString(in.Bucket))[key]
		out.Contents = append(out.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(obj.Body))),
			LastModified: aws.Time(obj.LastModified),
		})
	}
	out.KeyCount = aws.Int32(int32(len(out.Contents)))
	return out, nil
}

func (f *S3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if err := f.fail("HeadObject"); err != nil {
		return nil, err
	}
	obj, ok := f.Get(aws.ToString(in.Bucket), aws.ToString(in.Key))
	if !ok {
		// HEAD responses have no body, S3 reports a bare 404
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ContentType:   aws.String(obj.ContentType),
		Metadata:      maps.Clone(obj.Metadata),
		LastModified:  aws.Time(obj.LastModified),
	}, nil
}

func (f *S3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if err := f.fail("GetObject"); err != nil {
		return nil, err
	}
	obj, ok := f.Get(aws.ToString(in.Bucket), aws.ToString(in.Key))
	if !ok {
		return nil, notFound(aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.Body)),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ContentType:   aws.String(obj.ContentType),
		Metadata:      maps.Clone(obj.Metadata),
	}, nil
}

func (f *S3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if err := f.fail("PutObject"); err != nil {
		return nil, err
	}
	var body []byte
	if in.Body != nil {
		var err error
		if body, err = io.ReadAll(in.Body); err != nil {
			return nil, errors.Wrap(err, "read body")
		}
	}
	f.Put(aws.ToString(in.Bucket), aws.ToString(in.Key), Object{
		Body:        body,
		ContentType: aws.ToString(in.ContentType),
		Metadata:    maps.Clone(in.Metadata),
	})
	return &s3.PutObjectOutput{}, nil
}

func (f *S3) CopyObject(_ context.Context, in *s3.CopyObjectInput, _ ...func(*s3.Options)) (*s3.CopyObjectOutput, error) {
	if err := f.fail("CopyObject"); err != nil {
		return nil, err
	}
	source, err := url.PathUnescape(aws.ToString(in.CopySource))
	if err != nil {
		return nil, errors.Wrap(err, "unescape copy source")
	}
	srcBucket, srcKey, ok := strings.Cut(source, "/")
	if !ok {
		return nil, errors.Newf("invalid copy source %q", source)
	}
	obj, found := f.Get(srcBucket, srcKey)
	if !found {
		return nil, notFound(srcBucket, srcKey)
	}

	copied := Object{Body: obj.Body, ContentType: obj.ContentType, Metadata: maps.Clone(obj.Metadata)}
	if in.MetadataDirective == types.MetadataDirectiveReplace {
		copied.Metadata = maps.Clone(in.Metadata)
	}
	f.Put(aws.ToString(in.Bucket), aws.ToString(in.Key), copied)
	return &s3.CopyObjectOutput{}, nil
}

func (f *S3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if err := f.fail("DeleteObject"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.bucket(aws.ToString(in.Bucket)), aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *S3) PresignPutObject(
	_ context.Context, in *s3.PutObjectInput, opts ...func(*s3.PresignOptions),
) (*v4.PresignedHTTPRequest, error) {
	if err := f.fail("PresignPutObject"); err != nil {
		return nil, err
	}
	f.recordPresign(opts)
	f.PresignedPut = in
	return &v4.PresignedHTTPRequest{
		URL:    fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Expires=%d", aws.ToString(in.Bucket), aws.ToString(in.Key), int(f.PresignExpires.Seconds())),
		Method: "PUT",
	}, nil
}

func (f *S3) PresignGetObject(
	_ context.Context, in *s3.GetObjectInput, opts ...func(*s3.PresignOptions),
) (*v4.PresignedHTTPRequest, error) {
	if err := f.fail("PresignGetObject"); err != nil {
		return nil, err
	}
	f.recordPresign(opts)
	return &v4.PresignedHTTPRequest{
		URL:    fmt.Sprintf("https://%s.s3.amazonaws.com/%s?X-Amz-Expires=%d", aws.ToString(in.Bucket), aws.ToString(in.Key), int(f.PresignExpires.Seconds())),
		Method: "GET",
	}, nil
}

func (f *S3) recordPresign(opts []func(*s3.PresignOptions)) {
	var o s3.PresignOptions
	for _, opt := range opts {
		opt(&o)
	}
	f.PresignExpires = o.Expires
}
