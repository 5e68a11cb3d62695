// Package media turns stored product image keys into URLs clients can fetch.
package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// URLResolver maps an image key such as "burger.jpg" to a URL.
type URLResolver interface {
	URL(ctx context.Context, key string) (string, error)
}

// staticResolver serves images from a fixed base URL.
type staticResolver struct {
	baseURL string
}

// NewStaticResolver creates a resolver that joins baseURL and the key.
func NewStaticResolver(baseURL string) URLResolver {
	return &staticResolver{baseURL: baseURL}
}

func (r *staticResolver) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return strings.TrimSuffix(r.baseURL, "/") + "/" + strings.TrimPrefix(key, "/"), nil
}

// presigner is the subset of s3.PresignClient used here.
type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var _ presigner = (*s3.PresignClient)(nil)

// s3Resolver hands out presigned GET URLs for images stored in a bucket.
type s3Resolver struct {
	presign presigner
	bucket  string
	prefix  string
	ttl     time.Duration
	logger  zerolog.Logger
}

// S3Options configures the presigning resolver.
type S3Options struct {
	Bucket string
	Region string
	Prefix string
	TTL    time.Duration
}

// NewS3Resolver creates a presigning resolver using the default AWS
// credential chain.
func NewS3Resolver(ctx context.Context, opts S3Options, logger zerolog.Logger) (URLResolver, error) {
	logger = logger.With().Str("component", "s3-media").Logger()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", opts.Bucket).
		Str("region", opts.Region).
		Msg("S3 media resolver initialised")

	return NewS3ResolverFromClient(s3.NewFromConfig(cfg), opts, logger), nil
}

// NewS3ResolverFromClient wraps an existing S3 client.
func NewS3ResolverFromClient(client *s3.Client, opts S3Options, logger zerolog.Logger) URLResolver {
	return &s3Resolver{
		presign: s3.NewPresignClient(client),
		bucket:  opts.Bucket,
		prefix:  opts.Prefix,
		ttl:     opts.TTL,
		logger:  logger,
	}
}

func (r *s3Resolver) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	objectKey := r.prefix + strings.TrimPrefix(key, "/")
	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("bucket", r.bucket).
			Str("key", objectKey).
			Msg("failed to presign image URL")
		return "", fmt.Errorf("failed to presign image URL (bucket=%s, key=%s): %w", r.bucket, objectKey, err)
	}

	return req.URL, nil
}

// fallbackResolver tries S3 first and falls back to static URLs.
type fallbackResolver struct {
	primary  URLResolver
	fallback URLResolver
	logger   zerolog.Logger
}

// NewFallbackResolver creates a resolver that uses primary when it is set and
// succeeds, and fallback otherwise.
func NewFallbackResolver(primary, fallback URLResolver, logger zerolog.Logger) URLResolver {
	return &fallbackResolver{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With().Str("component", "fallback-media").Logger(),
	}
}

func (r *fallbackResolver) URL(ctx context.Context, key string) (string, error) {
	if r.primary != nil {
		url, err := r.primary.URL(ctx, key)
		if err == nil {
			return url, nil
		}
		r.logger.Warn().Err(err).Str("key", key).Msg("primary media resolver failed, using fallback")
	}

	return r.fallback.URL(ctx, key)
}
