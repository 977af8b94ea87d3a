// Package metadata decodes HealthImaging image set metadata blobs.
//
// The service returns metadata as a gzip-compressed JSON document. Decode
// inflates the whole blob in memory and parses it into a Document, which is
// served back to clients verbatim. Hierarchy gives a typed view over the
// Patient / Study / Series / Instance / ImageFrame chain for callers that
// need to walk it.
package metadata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

const (
	ContentTypeJSON = "application/json"
	EncodingGzip    = "gzip"
)

// Decode stages reported in DecodeError.
const (
	StageDecompress = "decompress"
	StageParse      = "parse"
)

// Document is a decoded metadata tree. Numbers are kept as json.Number so the
// tree re-encodes to the same values it was parsed from.
type Document map[string]any

// DecodeError reports a blob that had the expected content type and encoding
// but could not be inflated or parsed.
type DecodeError struct {
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("metadata %s failed: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode gunzips blob and parses the JSON document inside it.
func Decode(blob []byte) (Document, error) {
	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, &DecodeError{Stage: StageDecompress, Err: err}
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, &DecodeError{Stage: StageDecompress, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, &DecodeError{Stage: StageParse, Err: err}
	}
	if doc == nil {
		return nil, &DecodeError{Stage: StageParse, Err: fmt.Errorf("document root is null")}
	}
	// Trailing data after the root object means the blob is not a single document.
	if _, err := dec.Token(); err != io.EOF {
		return nil, &DecodeError{Stage: StageParse, Err: fmt.Errorf("unexpected data after document root")}
	}

	return doc, nil
}
