// Package objectstore persists product photos in an S3-compatible bucket
// (AWS S3 or MinIO) and resolves their public URLs.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/server/models"
)

// ErrAlreadyExists is returned by Put with overwrite disabled when the key
// is taken.
var ErrAlreadyExists = errors.New("object already exists")

// s3API is the subset of *s3.Client used by the store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Settings describe how to reach the bucket.
type Settings struct {
	AccessKey     string
	SecretKey     string
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// S3Store implements Put/List/Delete/PublicURL over one bucket.
type S3Store struct {
	client     s3API
	bucket     string
	publicBase string
}

// NewS3Store builds a client with static credentials. A custom endpoint
// switches to path-style addressing, which MinIO requires. Missing
// credentials or bucket yield common.ErrNotConfigured.
func NewS3Store(ctx context.Context, st Settings) (*S3Store, error) {
	if st.AccessKey == "" || st.SecretKey == "" || st.Bucket == "" {
		return nil, fmt.Errorf("object store: %w", common.ErrNotConfigured)
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(st.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			st.AccessKey,
			st.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if st.Endpoint != "" {
			o.BaseEndpoint = aws.String(st.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3StoreWithClient(client, st), nil
}

// NewS3StoreWithClient wraps a pre-configured client.
func NewS3StoreWithClient(client s3API, st Settings) *S3Store {
	return &S3Store{
		client:     client,
		bucket:     st.Bucket,
		publicBase: publicBase(st),
	}
}

// publicBase picks the URL prefix for objects. Without an explicit public
// URL it is the endpoint plus bucket (path style) or the virtual-hosted AWS
// address.
func publicBase(st Settings) string {
	if st.PublicBaseURL != "" {
		return strings.TrimRight(st.PublicBaseURL, "/")
	}
	if st.Endpoint != "" {
		return strings.TrimRight(st.Endpoint, "/") + "/" + st.Bucket
	}
	region := st.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", st.Bucket, region)
}

// Put stores body under path and returns its public URL. With overwrite
// disabled the write is conditional (If-None-Match: *) and a taken key
// yields ErrAlreadyExists.
func (s *S3Store) Put(ctx context.Context, path string, body []byte, contentType string, overwrite bool) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if !overwrite {
		in.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		if !overwrite && isPreconditionFailed(err) {
			return "", fmt.Errorf("put %s: %w", path, ErrAlreadyExists)
		}
		return "", fmt.Errorf("put %s: %w", path, err)
	}
	return s.PublicURL(path), nil
}

// List returns every object under prefix in key order (S3 lists keys in
// ascending UTF-8 order).
func (s *S3Store) List(ctx context.Context, prefix string) ([]models.StoredObject, error) {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var result []models.StoredObject
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			item := models.StoredObject{
				Path: aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				item.LastModified = *obj.LastModified
			}
			result = append(result, item)
		}
	}
	return result, nil
}

// Delete removes the object at path. Deleting a missing key succeeds, as S3 does.
func (s *S3Store) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// PublicURL resolves path deterministically; each segment is escaped.
func (s *S3Store) PublicURL(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicBase + "/" + strings.Join(segments, "/")
}
