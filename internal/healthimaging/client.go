package healthimaging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging"
	"github.com/aws/aws-sdk-go-v2/service/medicalimaging/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/floryst/aws-ahi-playground/internal/metadata"
)

const instrumentationName = "github.com/floryst/aws-ahi-playground/internal/healthimaging"

// Unlimited disables the result cap in SearchImageSets.
const Unlimited = -1

// API is the part of *medicalimaging.Client the gateway uses.
type API interface {
	medicalimaging.SearchImageSetsAPIClient
	GetImageSet(ctx context.Context, params *medicalimaging.GetImageSetInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetImageSetOutput, error)
	GetImageSetMetadata(ctx context.Context, params *medicalimaging.GetImageSetMetadataInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetImageSetMetadataOutput, error)
	GetImageFrame(ctx context.Context, params *medicalimaging.GetImageFrameInput, optFns ...func(*medicalimaging.Options)) (*medicalimaging.GetImageFrameOutput, error)
}

// Client manages communication with the HealthImaging API
type Client struct {
	api          API
	tracer       trace.Tracer
	remoteErrors otelmetric.Int64Counter
	frameSize    otelmetric.Int64Histogram
}

// New creates a gateway over api. Telemetry goes to the global OTel providers.
func New(api API) *Client {
	meter := otel.Meter(instrumentationName)
	remoteErrors, err := meter.Int64Counter("healthimaging.remote.errors",
		otelmetric.WithDescription("Failed calls to the HealthImaging service"))
	if err != nil {
		otel.Handle(err)
	}
	frameSize, err := meter.Int64Histogram("healthimaging.frame.size",
		otelmetric.WithDescription("Size of retrieved image frames"),
		otelmetric.WithUnit("By"))
	if err != nil {
		otel.Handle(err)
	}

	return &Client{
		api:          api,
		tracer:       otel.Tracer(instrumentationName),
		remoteErrors: remoteErrors,
		frameSize:    frameSize,
	}
}

// SearchImageSets pages through the image sets of a data store matching
// criteria. Paging stops once limit summaries have been collected and the
// result is cut to exactly limit; pass Unlimited to read every page.
func (c *Client) SearchImageSets(ctx context.Context, datastoreID string, criteria *types.SearchCriteria, limit int) ([]ImageSetSummary, error) {
	const op = "SearchImageSets"
	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("ahi.datastore_id", datastoreID),
		attribute.Int("ahi.limit", limit),
	))
	defer span.End()

	if limit == 0 {
		return []ImageSetSummary{}, nil
	}
	if criteria == nil {
		criteria = &types.SearchCriteria{}
	}

	paginator := medicalimaging.NewSearchImageSetsPaginator(c.api, &medicalimaging.SearchImageSetsInput{
		DatastoreId:    aws.String(datastoreID),
		SearchCriteria: criteria,
	})

	// Summaries past the limit are dropped unconverted so they cannot fail the search.
	var raw []types.ImageSetsMetadataSummary
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, c.remoteFailure(ctx, span, op, "Couldn't search image sets", err, "datastoreId", datastoreID)
		}
		raw = append(raw, page.ImageSetsMetadataSummaries...)
		if limit > 0 && len(raw) >= limit {
			break
		}
	}
	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}

	summaries := make([]ImageSetSummary, 0, len(raw))
	for _, s := range raw {
		summary, err := summaryFromSDK(s)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.ErrorContext(ctx, "Image set summary violates search contract", "datastoreId", datastoreID, "error", err)
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	span.SetAttributes(attribute.Int("ahi.result_count", len(summaries)))
	slog.DebugContext(ctx, "Searched image sets", "datastoreId", datastoreID, "count", len(summaries))
	return summaries, nil
}

// GetImageSet retrieves the properties of an image set. An empty versionID
// selects the latest version.
func (c *Client) GetImageSet(ctx context.Context, datastoreID, imageSetID, versionID string) (*ImageSetProperties, error) {
	const op = "GetImageSet"
	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("ahi.datastore_id", datastoreID),
		attribute.String("ahi.image_set_id", imageSetID),
	))
	defer span.End()

	input := &medicalimaging.GetImageSetInput{
		DatastoreId: aws.String(datastoreID),
		ImageSetId:  aws.String(imageSetID),
	}
	if versionID != "" {
		input.VersionId = aws.String(versionID)
	}

	out, err := c.api.GetImageSet(ctx, input)
	if err != nil {
		return nil, c.remoteFailure(ctx, span, op, "Couldn't get image set", err, "imageSetId", imageSetID)
	}

	return &ImageSetProperties{
		DatastoreID:    aws.ToString(out.DatastoreId),
		ImageSetID:     aws.ToString(out.ImageSetId),
		VersionID:      aws.ToString(out.VersionId),
		State:          out.ImageSetState,
		WorkflowStatus: out.ImageSetWorkflowStatus,
		ARN:            out.ImageSetArn,
		Message:        out.Message,
		CreatedAt:      out.CreatedAt,
		UpdatedAt:      out.UpdatedAt,
		DeletedAt:      out.DeletedAt,
	}, nil
}

// GetImageSetMetadata fetches and decodes the metadata document of an image
// set. An empty versionID selects the latest version. The blob's declared
// content type and encoding are checked before any of it is read.
func (c *Client) GetImageSetMetadata(ctx context.Context, datastoreID, imageSetID, versionID string) (metadata.Document, error) {
	const op = "GetImageSetMetadata"
	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("ahi.datastore_id", datastoreID),
		attribute.String("ahi.image_set_id", imageSetID),
	))
	defer span.End()

	input := &medicalimaging.GetImageSetMetadataInput{
		DatastoreId: aws.String(datastoreID),
		ImageSetId:  aws.String(imageSetID),
	}
	if versionID != "" {
		input.VersionId = aws.String(versionID)
	}

	out, err := c.api.GetImageSetMetadata(ctx, input)
	if err != nil {
		return nil, c.remoteFailure(ctx, span, op, "Couldn't get image metadata", err, "imageSetId", imageSetID)
	}
	if out.ImageSetMetadataBlob != nil {
		defer out.ImageSetMetadataBlob.Close()
	}

	if got := aws.ToString(out.ContentType); got != metadata.ContentTypeJSON {
		return nil, c.contractFailure(ctx, span, &ContractError{Operation: op, Field: "content type", Want: metadata.ContentTypeJSON, Got: got})
	}
	if got := aws.ToString(out.ContentEncoding); got != metadata.EncodingGzip {
		return nil, c.contractFailure(ctx, span, &ContractError{Operation: op, Field: "content encoding", Want: metadata.EncodingGzip, Got: got})
	}
	if out.ImageSetMetadataBlob == nil {
		return nil, c.contractFailure(ctx, span, &ContractError{Operation: op, Field: "metadata blob", Want: "present", Got: "missing"})
	}

	blob, err := io.ReadAll(out.ImageSetMetadataBlob)
	if err != nil {
		return nil, c.remoteFailure(ctx, span, op, "Couldn't read image metadata", err, "imageSetId", imageSetID)
	}

	doc, err := metadata.Decode(blob)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "Failed to decode image set metadata", "imageSetId", imageSetID, "blobSize", len(blob), "error", err)
		return nil, fmt.Errorf("image set %s: %w", imageSetID, err)
	}

	slog.DebugContext(ctx, "Retrieved image set metadata", "imageSetId", imageSetID, "blobSize", len(blob))
	return doc, nil
}

// GetPixelData retrieves the encoded pixel payload of one image frame.
func (c *Client) GetPixelData(ctx context.Context, datastoreID, imageSetID, imageFrameID string) (*PixelFrame, error) {
	const op = "GetImageFrame"
	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("ahi.datastore_id", datastoreID),
		attribute.String("ahi.image_set_id", imageSetID),
		attribute.String("ahi.image_frame_id", imageFrameID),
	))
	defer span.End()

	out, err := c.api.GetImageFrame(ctx, &medicalimaging.GetImageFrameInput{
		DatastoreId: aws.String(datastoreID),
		ImageSetId:  aws.String(imageSetID),
		ImageFrameInformation: &types.ImageFrameInformation{
			ImageFrameId: aws.String(imageFrameID),
		},
	})
	if err != nil {
		return nil, c.remoteFailure(ctx, span, op, "Couldn't get image frame", err, "imageSetId", imageSetID, "imageFrameId", imageFrameID)
	}
	if out.ImageFrameBlob != nil {
		defer out.ImageFrameBlob.Close()
	}

	if got := aws.ToString(out.ContentType); got != contentTypeOctetStream {
		return nil, c.contractFailure(ctx, span, &ContractError{Operation: op, Field: "content type", Want: contentTypeOctetStream, Got: got})
	}
	if out.ImageFrameBlob == nil {
		return nil, c.contractFailure(ctx, span, &ContractError{Operation: op, Field: "image frame blob", Want: "present", Got: "missing"})
	}

	data, err := io.ReadAll(out.ImageFrameBlob)
	if err != nil {
		return nil, c.remoteFailure(ctx, span, op, "Couldn't read image frame", err, "imageSetId", imageSetID, "imageFrameId", imageFrameID)
	}

	if c.frameSize != nil {
		c.frameSize.Record(ctx, int64(len(data)))
	}
	span.SetAttributes(attribute.Int("ahi.frame_size", len(data)))
	slog.DebugContext(ctx, "Retrieved image frame", "imageSetId", imageSetID, "imageFrameId", imageFrameID, "size", len(data))
	return &PixelFrame{ContentType: contentTypeOctetStream, Data: data}, nil
}

// remoteFailure logs the vendor code and message of err and returns it as a RemoteError.
func (c *Client) remoteFailure(ctx context.Context, span trace.Span, op, msg string, err error, attrs ...any) error {
	re := newRemoteError(op, err)

	span.RecordError(err)
	span.SetStatus(codes.Error, re.Error())
	if c.remoteErrors != nil {
		c.remoteErrors.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("code", re.Code),
		))
	}

	logAttrs := append([]any{"code", re.Code, "message", re.Message, "statusCode", re.StatusCode, "error", err}, attrs...)
	slog.ErrorContext(ctx, msg, logAttrs...)
	return re
}

func (c *Client) contractFailure(ctx context.Context, span trace.Span, err *ContractError) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	slog.ErrorContext(ctx, "HealthImaging response violates contract", "operation", err.Operation, "field", err.Field, "want", err.Want, "got", err.Got)
	return err
}

func summaryFromSDK(s types.ImageSetsMetadataSummary) (ImageSetSummary, error) {
	summary := ImageSetSummary{
		ID:        aws.ToString(s.ImageSetId),
		Version:   aws.ToInt32(s.Version),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}

	tags := s.DICOMTags
	if tags == nil || tags.DICOMStudyInstanceUID == nil {
		return ImageSetSummary{}, &ContractError{
			Operation: "SearchImageSets",
			Field:     "DICOMStudyInstanceUID of image set " + summary.ID,
			Want:      "present",
			Got:       "missing",
		}
	}

	summary.PatientID = tags.DICOMPatientId
	summary.PatientName = tags.DICOMPatientName
	summary.PatientSex = tags.DICOMPatientSex
	summary.PatientBirthDate = tags.DICOMPatientBirthDate
	summary.StudyDate = tags.DICOMStudyDate
	summary.StudyDescription = tags.DICOMStudyDescription
	summary.StudyID = tags.DICOMStudyId
	summary.StudyInstanceUID = *tags.DICOMStudyInstanceUID
	return summary, nil
}
