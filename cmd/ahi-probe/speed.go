package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/pflag"

	"github.com/floryst/aws-ahi-playground/internal/awsclient"
	"github.com/floryst/aws-ahi-playground/internal/config"
	"github.com/floryst/aws-ahi-playground/internal/healthimaging"
	"github.com/floryst/aws-ahi-playground/internal/storage"
)

type speedOptions struct {
	imageSetID string
	frameID    string
	loops      int
}

func (o *speedOptions) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.imageSetID, "image-set", "", "image set holding the frame (required)")
	flagSet.StringVar(&o.frameID, "frame", "", "image frame to fetch (required)")
	flagSet.IntVarP(&o.loops, "loops", "n", 10, "fetches per source")
}

type fetchFunc func(ctx context.Context) (int, error)

type source struct {
	name  string
	fetch fetchFunc
}

// timing is the averaged result of one source.
type timing struct {
	Source  string
	Average time.Duration
	Bytes   int
}

func (t timing) String() string {
	return fmt.Sprintf("%s Execution time: %.4f seconds, %d bytes", t.Source, t.Average.Seconds(), t.Bytes)
}

func (o *speedOptions) validate(cfg *config.Config) error {
	var errs []error
	if o.imageSetID == "" {
		errs = append(errs, errors.New("--image-set is required"))
	}
	if o.frameID == "" {
		errs = append(errs, errors.New("--frame is required"))
	}
	if o.loops <= 0 {
		errs = append(errs, errors.New("--loops must be positive"))
	}
	if cfg.S3URI == "" {
		errs = append(errs, errors.New("S3_URI is required"))
	}
	return errors.Join(errs...)
}

func (o *speedOptions) run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	if err := o.validate(cfg); err != nil {
		return err
	}
	loc, err := storage.ParseURI(cfg.S3URI)
	if err != nil {
		return err
	}

	awsCfg, err := awsclient.LoadConfig(ctx, cfg)
	if err != nil {
		return err
	}
	gw := healthimaging.New(medicalimaging.NewFromConfig(awsCfg))
	store := storage.NewStore(s3.NewFromConfig(awsCfg))
	httpClient := &http.Client{Timeout: cfg.HttpClientTimeout}

	sources := []source{
		{"AHI Pixel Data", func(ctx context.Context) (int, error) {
			frame, err := gw.GetPixelData(ctx, cfg.DatastoreID, o.imageSetID, o.frameID)
			if err != nil {
				return 0, err
			}
			return len(frame.Data), nil
		}},
		{"SDK S3", func(ctx context.Context) (int, error) {
			data, err := store.Get(ctx, loc)
			return len(data), err
		}},
	}
	if strings.HasPrefix(cfg.S3URI, "http://") || strings.HasPrefix(cfg.S3URI, "https://") {
		sources = append(sources, source{"HTTP S3", func(ctx context.Context) (int, error) {
			return httpGet(ctx, httpClient, cfg.S3URI)
		}})
	}

	for _, src := range sources {
		t, err := measure(ctx, src.name, o.loops, src.fetch)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, t)
	}
	return nil
}

// measure calls fetch loops times and averages the wall time. Bytes is the
// size returned by the last call.
func measure(ctx context.Context, name string, loops int, fetch fetchFunc) (timing, error) {
	var size int
	start := time.Now()
	for i := 0; i < loops; i++ {
		n, err := fetch(ctx)
		if err != nil {
			return timing{}, fmt.Errorf("%s: %w", name, err)
		}
		size = n
	}
	elapsed := time.Since(start)
	return timing{Source: name, Average: elapsed / time.Duration(loops), Bytes: size}, nil
}

func httpGet(ctx context.Context, client *http.Client, uri string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request to %s: %w", uri, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to get %s: %w", uri, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("received non-OK status code %d from %s", resp.StatusCode, uri)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body from %s: %w", uri, err)
	}
	return len(body), nil
}
