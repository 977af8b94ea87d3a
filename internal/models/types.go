// File: internal/models/types.go
package models

import "github.com/floryst/aws-ahi-playground/internal/healthimaging"

// ImageSetListItem is one entry of the /list-image-sets response.
// Optional DICOM fields are pointers without omitempty so absent values
// serialize as null instead of disappearing.
type ImageSetListItem struct {
	ImageSetID       string  `json:"imageSetId"`
	PatientID        *string `json:"PatientId"`
	PatientName      *string `json:"PatientName"`
	PatientSex       *string `json:"PatientSex"`
	PatientBirthDate *string `json:"PatientBirthDate"`
	StudyDate        *string `json:"StudyDate"`
	StudyDescription *string `json:"StudyDescription"`
	StudyID          *string `json:"StudyId"`
	StudyInstanceUID string  `json:"StudyInstanceUID"`
}

// NewImageSetListItem projects a search summary into its response shape.
func NewImageSetListItem(s healthimaging.ImageSetSummary) ImageSetListItem {
	return ImageSetListItem{
		ImageSetID:       s.ID,
		PatientID:        s.PatientID,
		PatientName:      s.PatientName,
		PatientSex:       s.PatientSex,
		PatientBirthDate: s.PatientBirthDate,
		StudyDate:        s.StudyDate,
		StudyDescription: s.StudyDescription,
		StudyID:          s.StudyID,
		StudyInstanceUID: s.StudyInstanceUID,
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	RequestID string `json:"requestId,omitempty"`
}
