package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/spf13/pflag"

	"github.com/floryst/aws-ahi-playground/internal/awsclient"
	"github.com/floryst/aws-ahi-playground/internal/config"
	"github.com/floryst/aws-ahi-playground/internal/healthimaging"
)

type inspectOptions struct {
	imageSetID string
	out        string
}

func (o *inspectOptions) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.imageSetID, "image-set", "", "image set to inspect (default: first search result)")
	flagSet.StringVarP(&o.out, "out", "o", "frame.bin", "file the middle frame is written to")
}

func (o *inspectOptions) run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	awsCfg, err := awsclient.LoadConfig(ctx, cfg)
	if err != nil {
		return err
	}
	return o.inspect(ctx, healthimaging.New(medicalimaging.NewFromConfig(awsCfg)), cfg.DatastoreID, stdout)
}

func (o *inspectOptions) inspect(ctx context.Context, gw imagingGateway, datastoreID string, stdout io.Writer) error {
	imageSetID := o.imageSetID
	if imageSetID == "" {
		summaries, err := gw.SearchImageSets(ctx, datastoreID, nil, 1)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			return fmt.Errorf("data store %s has no image sets", datastoreID)
		}
		s := summaries[0]
		imageSetID = s.ID
		fmt.Fprintf(stdout, "Image set %s (version %d)\n", s.ID, s.Version)
		fmt.Fprintf(stdout, "  Patient: id=%s name=%s sex=%s birth=%s\n",
			aws.ToString(s.PatientID), aws.ToString(s.PatientName), aws.ToString(s.PatientSex), aws.ToString(s.PatientBirthDate))
		fmt.Fprintf(stdout, "  Study:   uid=%s id=%s date=%s description=%s\n",
			s.StudyInstanceUID, aws.ToString(s.StudyID), aws.ToString(s.StudyDate), aws.ToString(s.StudyDescription))
	}

	props, err := gw.GetImageSet(ctx, datastoreID, imageSetID, "")
	if err != nil {
		return err
	}
	printProperties(stdout, props)

	// Metadata is read at the version just reported so both views agree.
	doc, err := gw.GetImageSetMetadata(ctx, datastoreID, imageSetID, props.VersionID)
	if err != nil {
		return err
	}
	h, err := doc.Hierarchy()
	if err != nil {
		return err
	}

	seriesUIDs := h.SeriesUIDs()
	if len(seriesUIDs) == 0 {
		return fmt.Errorf("image set %s has no series", imageSetID)
	}
	for _, uid := range seriesUIDs {
		fmt.Fprintf(stdout, "Series UID: %s\n", uid)
		fmt.Fprintf(stdout, " Number of instances: %d\n", len(h.Study.Series[uid].Instances))
	}

	seriesUID := seriesUIDs[0]
	series := h.Study.Series[seriesUID]
	fmt.Fprintf(stdout, "Looking at series: %s\n", seriesUID)
	fmt.Fprintf(stdout, "Number of instances: %d\n", len(series.Instances))

	instanceUIDs := series.InstanceUIDs()
	if len(instanceUIDs) == 0 {
		return fmt.Errorf("series %s has no instances", seriesUID)
	}
	instance := series.Instances[instanceUIDs[0]]
	fmt.Fprintf(stdout, "Number of frames: %d\n", len(instance.ImageFrames))

	frame, ok := instance.MiddleFrame()
	if !ok {
		return fmt.Errorf("instance %s has no frames", instanceUIDs[0])
	}

	pixels, err := gw.GetPixelData(ctx, datastoreID, imageSetID, frame.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Frame %s: %d bytes (%s)\n", frame.ID, len(pixels.Data), pixels.ContentType)

	if err := os.WriteFile(o.out, pixels.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	fmt.Fprintf(stdout, "Wrote out a single HTJ2K frame to %s\n", o.out)
	return nil
}

func printProperties(w io.Writer, p *healthimaging.ImageSetProperties) {
	fmt.Fprintf(w, "State: %s (workflow %s), version %s\n", p.State, p.WorkflowStatus, p.VersionID)
	if p.ARN != nil {
		fmt.Fprintf(w, "  ARN:     %s\n", *p.ARN)
	}
	if p.UpdatedAt != nil {
		fmt.Fprintf(w, "  Updated: %s\n", p.UpdatedAt.UTC().Format(time.RFC3339))
	}
	if p.Message != nil {
		fmt.Fprintf(w, "  Message: %s\n", *p.Message)
	}
}
