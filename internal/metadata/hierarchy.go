package metadata

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Hierarchy is a typed view of the parts of a metadata document used to
// navigate down to individual image frames. DICOM attribute groups are kept
// as raw maps since their keys vary by modality.
type Hierarchy struct {
	SchemaVersion string         `json:"SchemaVersion,omitempty"`
	DatastoreID   string         `json:"DatastoreID,omitempty"`
	ImageSetID    string         `json:"ImageSetID,omitempty"`
	Patient       map[string]any `json:"Patient"`
	Study         Study          `json:"Study"`
}

type Study struct {
	DICOM  map[string]any    `json:"DICOM,omitempty"`
	Series map[string]Series `json:"Series"`
}

type Series struct {
	DICOM     map[string]any      `json:"DICOM,omitempty"`
	Instances map[string]Instance `json:"Instances"`
}

type Instance struct {
	DICOM       map[string]any `json:"DICOM,omitempty"`
	ImageFrames []ImageFrame   `json:"ImageFrames"`
}

// ImageFrame describes one addressable frame. ID is what GetImageFrame takes.
type ImageFrame struct {
	ID                                        string          `json:"ID"`
	PixelDataChecksumFromBaseToFullResolution []FrameChecksum `json:"PixelDataChecksumFromBaseToFullResolution,omitempty"`
	MinPixelValue                             json.Number     `json:"MinPixelValue,omitempty"`
	MaxPixelValue                             json.Number     `json:"MaxPixelValue,omitempty"`
}

type FrameChecksum struct {
	Width    json.Number `json:"Width"`
	Height   json.Number `json:"Height"`
	Checksum json.Number `json:"Checksum"`
}

// Hierarchy re-reads the document into its typed view.
func (d Document) Hierarchy() (*Hierarchy, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode metadata document: %w", err)
	}
	var h Hierarchy
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, &DecodeError{Stage: StageParse, Err: err}
	}
	if h.Patient == nil {
		return nil, &DecodeError{Stage: StageParse, Err: fmt.Errorf("document has no Patient")}
	}
	return &h, nil
}

// SeriesUIDs returns the series UIDs in sorted order.
func (h *Hierarchy) SeriesUIDs() []string {
	return sortedKeys(h.Study.Series)
}

// InstanceUIDs returns the SOP instance UIDs of the series in sorted order.
func (s Series) InstanceUIDs() []string {
	return sortedKeys(s.Instances)
}

// MiddleFrame returns the frame at index len/2, or false if the instance has
// no frames.
func (i Instance) MiddleFrame() (ImageFrame, bool) {
	if len(i.ImageFrames) == 0 {
		return ImageFrame{}, false
	}
	return i.ImageFrames[len(i.ImageFrames)/2], true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
