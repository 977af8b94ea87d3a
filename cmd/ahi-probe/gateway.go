package main

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/medicalimaging/types"

	"github.com/floryst/aws-ahi-playground/internal/healthimaging"
	"github.com/floryst/aws-ahi-playground/internal/metadata"
)

// imagingGateway is satisfied by *healthimaging.Client.
type imagingGateway interface {
	SearchImageSets(ctx context.Context, datastoreID string, criteria *types.SearchCriteria, limit int) ([]healthimaging.ImageSetSummary, error)
	GetImageSet(ctx context.Context, datastoreID, imageSetID, versionID string) (*healthimaging.ImageSetProperties, error)
	GetImageSetMetadata(ctx context.Context, datastoreID, imageSetID, versionID string) (metadata.Document, error)
	GetPixelData(ctx context.Context, datastoreID, imageSetID, imageFrameID string) (*healthimaging.PixelFrame, error)
}
