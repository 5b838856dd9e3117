package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Output kinds a request can ask for.
const (
	OutputGeoJSON = "geojson"
	OutputPNG     = "png"
)

// DatasetRequest asks the service to convert one dataset.
type DatasetRequest struct {
	ID          string   `json:"id"`
	InputPath   string   `json:"input_path"`
	GeoJSONPath string   `json:"geojson_path,omitempty"`
	PNGPath     string   `json:"png_path,omitempty"`
	Date        string   `json:"date,omitempty"`
	Outputs     []string `json:"outputs,omitempty"` // empty means both
}

// Wants reports whether the request asks for the given output kind.
func (r DatasetRequest) Wants(kind string) bool {
	if len(r.Outputs) == 0 {
		return true
	}
	for _, o := range r.Outputs {
		if o == kind {
			return true
		}
	}
	return false
}

// Artifact describes one file written by a pipeline run.
type Artifact struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Records int    `json:"records"`
	Bytes   int64  `json:"bytes"`
}

// ConversionResult is published after a request has been processed.
type ConversionResult struct {
	RequestID   string     `json:"request_id"`
	InputPath   string     `json:"input_path"`
	Date        string     `json:"date,omitempty"`
	Artifacts   []Artifact `json:"artifacts"`
	Summary     *Summary   `json:"summary,omitempty"`
	ProcessedAt time.Time  `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
