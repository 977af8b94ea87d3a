// File: internal/storage/s3.go
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore reads whole objects. Used to compare plain object storage
// latency against HealthImaging frame retrieval.
type ObjectStore interface {
	Get(ctx context.Context, loc Location) ([]byte, error)
}

// S3API is the part of *s3.Client the store uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Location addresses one object.
type Location struct {
	Bucket string
	Key    string
}

func (l Location) String() string {
	return "s3://" + l.Bucket + "/" + l.Key
}

// ParseURI accepts s3://bucket/key and virtual-hosted style
// https://bucket.s3.<region>.amazonaws.com/key URIs.
func ParseURI(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid object URI %q: %w", raw, err)
	}

	var loc Location
	switch u.Scheme {
	case "s3":
		loc.Bucket = u.Host
	case "http", "https":
		// Bucket is the first label of the virtual-hosted host name.
		loc.Bucket, _, _ = strings.Cut(u.Hostname(), ".")
	default:
		return Location{}, fmt.Errorf("unsupported object URI scheme %q", u.Scheme)
	}
	loc.Key = strings.TrimPrefix(u.Path, "/")

	if loc.Bucket == "" || loc.Key == "" {
		return Location{}, fmt.Errorf("object URI %q must name a bucket and a key", raw)
	}
	return loc, nil
}

// Store handles S3 object reads.
type Store struct {
	api S3API
}

// NewStore creates a new Store instance.
func NewStore(api S3API) *Store {
	if api == nil {
		panic("s3 client cannot be nil")
	}
	return &Store{api: api}
}

// Get reads the whole object into memory.
func (s *Store) Get(ctx context.Context, loc Location) ([]byte, error) {
	slog.DebugContext(ctx, "Fetching object", "location", loc.String())

	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		slog.ErrorContext(ctx, "Error fetching object from S3", "location", loc.String(), "error", err)
		return nil, fmt.Errorf("failed to get object %s: %w", loc, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", loc, err)
	}

	slog.DebugContext(ctx, "Fetched object", "location", loc.String(), "size", len(data))
	return data, nil
}
