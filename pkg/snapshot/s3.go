package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-botgraph/pkg/graph"
)

const s3Scheme = "s3://"

// S3API is the subset of the S3 client the store needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store keeps the snapshot in one S3 object.
type S3Store struct {
	client     S3API
	bucket     string
	key        string
	compressed bool
}

// NewS3Store returns a store for bucket/key.
func NewS3Store(client S3API, bucket, key string) *S3Store {
	return &S3Store{client: client, bucket: bucket, key: key, compressed: compressed(key)}
}

// ParseS3URL splits s3://bucket/key.
func ParseS3URL(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("snapshot: %q is not an s3 url", location)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("snapshot: %q needs both bucket and key", location)
	}
	return bucket, key, nil
}

func newS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}

// Location returns the s3:// url of the object.
func (s *S3Store) Location() string {
	return s3Scheme + s.bucket + "/" + s.key
}

// Raw downloads the JSON document.
func (s *S3Store) Raw(ctx context.Context) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Location())
		}
		return nil, fmt.Errorf("get snapshot %s: %w", s.Location(), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.Location(), err)
	}
	if s.compressed {
		if data, err = snappy.Decode(nil, data); err != nil {
			return nil, fmt.Errorf("decompress snapshot %s: %w", s.Location(), err)
		}
	}
	return data, nil
}

// Load downloads and decodes the snapshot.
func (s *S3Store) Load(ctx context.Context) (*graph.Graph, error) {
	data, err := s.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return decode(s.Location(), data)
}

// Save uploads g, replacing the object.
func (s *S3Store) Save(ctx context.Context, g *graph.Graph) error {
	data, err := graph.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	contentType := "application/json"
	if s.compressed {
		data = snappy.Encode(nil, data)
		contentType = "application/x-snappy"
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put snapshot %s: %w", s.Location(), err)
	}
	return nil
}
