package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/medicalimaging/types"
	"github.com/gin-gonic/gin"

	"github.com/floryst/aws-ahi-playground/internal/healthimaging"
	"github.com/floryst/aws-ahi-playground/internal/metadata"
	"github.com/floryst/aws-ahi-playground/internal/models"
)

// listImageSetsLimit caps /list-image-sets; callers cannot page further.
const listImageSetsLimit = 100

const contentTypeOctetStream = "application/octet-stream"

// ImagingGateway is what the handlers need from the HealthImaging client.
type ImagingGateway interface {
	SearchImageSets(ctx context.Context, datastoreID string, criteria *types.SearchCriteria, limit int) ([]healthimaging.ImageSetSummary, error)
	GetImageSetMetadata(ctx context.Context, datastoreID, imageSetID, versionID string) (metadata.Document, error)
	GetPixelData(ctx context.Context, datastoreID, imageSetID, imageFrameID string) (*healthimaging.PixelFrame, error)
}

// APIHandler holds dependencies for API handlers
type APIHandler struct {
	gateway     ImagingGateway
	datastoreID string
}

// NewAPIHandler creates a new handler instance bound to one data store.
func NewAPIHandler(gateway ImagingGateway, datastoreID string) *APIHandler {
	return &APIHandler{
		gateway:     gateway,
		datastoreID: datastoreID,
	}
}

// ListImageSetsHandler returns up to listImageSetsLimit image sets of the
// data store in service order.
func (h *APIHandler) ListImageSetsHandler(c *gin.Context) {
	ctx := c.Request.Context()

	summaries, err := h.gateway.SearchImageSets(ctx, h.datastoreID, nil, listImageSetsLimit)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]models.ImageSetListItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, models.NewImageSetListItem(s))
	}

	slog.DebugContext(ctx, "Listed image sets", "count", len(items), "requestId", requestID(c))
	c.JSON(http.StatusOK, items)
}

// GetImageSetHandler returns the decoded metadata document of the latest
// version of an image set.
func (h *APIHandler) GetImageSetHandler(c *gin.Context) {
	imageSetID := c.Param("image_set_id")

	doc, err := h.gateway.GetImageSetMetadata(c.Request.Context(), h.datastoreID, imageSetID, "")
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// GetPixelDataHandler returns the encoded pixel payload of one frame.
func (h *APIHandler) GetPixelDataHandler(c *gin.Context) {
	imageSetID := c.Param("image_set_id")
	frameID := c.Param("frame_id")

	frame, err := h.gateway.GetPixelData(c.Request.Context(), h.datastoreID, imageSetID, frameID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Length", strconv.Itoa(len(frame.Data)))
	c.Data(http.StatusOK, contentTypeOctetStream, frame.Data)
}

// HealthCheckHandler handles health check requests
func (h *APIHandler) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
