package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ParseDatasetRequest decodes a request from a raw message. Requests without
// an ID get a deterministic one derived from the input path so replays
// produce the same key downstream.
func ParseDatasetRequest(raw RawEvent) (DatasetRequest, error) {
	var req DatasetRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return DatasetRequest{}, fmt.Errorf("parse dataset request: %w", err)
	}
	req.InputPath = strings.TrimSpace(req.InputPath)
	if req.InputPath == "" {
		return DatasetRequest{}, errors.New("parse dataset request: input_path is required")
	}
	for _, o := range req.Outputs {
		if o != OutputGeoJSON && o != OutputPNG {
			return DatasetRequest{}, fmt.Errorf("parse dataset request: unknown output %q", o)
		}
	}
	if req.ID == "" {
		req.ID = string(raw.Key)
	}
	if req.ID == "" {
		req.ID = requestID(req.InputPath)
	}
	return req, nil
}

// DefaultOutputPath derives an output path next to dir from the input file
// name, e.g. ("out", "ice_conc_..._202201011200.nc", ".png") ->
// "out/ice_conc_..._202201011200.png".
func DefaultOutputPath(dir, input, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(dir, base+ext)
}

// NewConversionResult stamps a result with the package clock.
func NewConversionResult(req DatasetRequest, date string, artifacts []Artifact) ConversionResult {
	return ConversionResult{
		RequestID:   req.ID,
		InputPath:   req.InputPath,
		Date:        date,
		Artifacts:   artifacts,
		ProcessedAt: clock.Now(),
	}
}

// SerializeResult marshals a result into an OutputEvent keyed by request ID.
func SerializeResult(result ConversionResult) (OutputEvent, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize conversion result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(result.RequestID),
		Value: data,
		Headers: map[string]string{
			"dataset":      filepath.Base(result.InputPath),
			"processed_at": result.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

func requestID(inputPath string) string {
	hash := sha256.Sum256([]byte(inputPath))
	return "ds-" + hex.EncodeToString(hash[:8])
}
