package artifact

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/matzehuels/netplot/pkg/errors"
)

const defaultRegion = "us-east-1"

// S3Config holds S3 connection settings. Credentials fall back to the
// default AWS chain when AccessKeyID is empty.
type S3Config struct {
	Bucket          string `toml:"bucket"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"` // e.g. http://localhost:9000 for MinIO
	PathStyle       bool   `toml:"path_style"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	SessionToken    string `toml:"session_token"`
}

// S3Option adjusts the S3 client.
type S3Option func(*s3.Options)

// WithHTTPClient replaces the transport used by the S3 client.
func WithHTTPClient(c s3.HTTPClient) S3Option {
	return func(o *s3.Options) { o.HTTPClient = c }
}

// S3Store stores artifacts in a single bucket. Keys map to object keys.
type S3Store struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// NewS3Store creates an S3 store. No request is made until the first Put.
func NewS3Store(ctx context.Context, cfg S3Config, opts ...S3Option) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken)))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// no checksum trailers for S3-compatible servers
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		}
		for _, opt := range opts {
			opt(o)
		}
	})
	return &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
	}, nil
}

func (s *S3Store) location(key string) string {
	if s.endpoint != "" {
		return s.endpoint + "/" + s.bucket + "/" + key
	}
	return "s3://" + s.bucket + "/" + key
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (Info, error) {
	if err := errors.ValidateObjectKey(key); err != nil {
		return Info{}, err
	}
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Info{}, errors.Wrap(errors.ErrCodeStorage, err, "put s3://%s/%s", s.bucket, key)
	}
	return Info{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
		Location:    s.location(key),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, Info, error) {
	if err := errors.ValidateObjectKey(key); err != nil {
		return nil, Info{}, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		var nsk *types.NoSuchKey
		var re *awshttp.ResponseError
		if stderrors.As(err, &nsk) || (stderrors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound) {
			return nil, Info{}, errors.New(errors.ErrCodeNotFound, "artifact %s not found", key)
		}
		return nil, Info{}, errors.Wrap(errors.ErrCodeStorage, err, "get s3://%s/%s", s.bucket, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, Info{}, errors.Wrap(errors.ErrCodeStorage, err, "read s3://%s/%s", s.bucket, key)
	}
	info := Info{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: aws.ToString(out.ContentType),
		Location:    s.location(key),
	}
	if out.LastModified != nil {
		info.CreatedAt = out.LastModified.UTC()
	}
	return data, info, nil
}

func (s *S3Store) Close() error { return nil }

var _ Store = (*S3Store)(nil)
