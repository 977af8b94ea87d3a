// Package awsclient builds the AWS SDK configuration shared by the server
// and the probe.
package awsclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/floryst/aws-ahi-playground/internal/config"
)

// LoadConfig resolves credentials and region through the SDK default chain.
// Outbound calls go through an otelhttp-instrumented client and are made
// exactly once: failures reach the caller instead of being retried.
func LoadConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   cfg.HttpClientTimeout,
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(httpClient),
		awsconfig.WithRetryMaxAttempts(1),
	}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return awsCfg, nil
}
