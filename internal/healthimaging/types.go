package healthimaging

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/medicalimaging/types"
)

const contentTypeOctetStream = "application/octet-stream"

// ImageSetSummary holds the search result for one image set.
// Optional DICOM descriptors are nil when the service did not record them.
type ImageSetSummary struct {
	ID               string
	Version          int32
	CreatedAt        *time.Time
	UpdatedAt        *time.Time
	PatientID        *string
	PatientName      *string
	PatientSex       *string
	PatientBirthDate *string
	StudyDate        *string
	StudyDescription *string
	StudyID          *string
	StudyInstanceUID string
}

// ImageSetProperties mirrors GetImageSet's output.
type ImageSetProperties struct {
	DatastoreID    string
	ImageSetID     string
	VersionID      string
	State          types.ImageSetState
	WorkflowStatus types.ImageSetWorkflowStatus
	ARN            *string
	Message        *string
	CreatedAt      *time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
}

// PixelFrame is the raw payload of a single image frame (HTJ2K encoded).
type PixelFrame struct {
	ContentType string
	Data        []byte
}
