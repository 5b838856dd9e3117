package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate reports the first unusable setting, naming its key.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if c.Basemap.CacheSize <= 0 {
		return errors.New("basemap.cache_size must be positive")
	}
	return c.validateService()
}

func (c *Config) validateDataset() error {
	d := c.Dataset
	if d.LatVar == "" || d.LonVar == "" || d.FieldVar == "" {
		return errors.New("dataset.lat_var, dataset.lon_var and dataset.field_var must be set")
	}
	if d.TimeIndex < 0 {
		return fmt.Errorf("dataset.time_index must not be negative, got %d", d.TimeIndex)
	}
	if isNotFinite(d.ValidMin) || isNotFinite(d.ValidMax) || d.ValidMin > d.ValidMax {
		return fmt.Errorf("dataset.valid_min (%g) must not exceed dataset.valid_max (%g)", d.ValidMin, d.ValidMax)
	}
	if d.SampleStep < 1 {
		return fmt.Errorf("dataset.sample_step must be at least 1, got %d", d.SampleStep)
	}
	if d.ValueLabel == "" || d.DateLabel == "" {
		return errors.New("dataset.value_label and dataset.date_label must be set")
	}
	return nil
}

func (c *Config) validateRender() error {
	r := c.Render
	if r.DPI <= 0 {
		return fmt.Errorf("render.dpi must be positive, got %d", r.DPI)
	}
	if r.WidthInches <= 0 || r.HeightInches <= 0 {
		return errors.New("render.width_in and render.height_in must be positive")
	}
	if r.MinLatitude < 0 || r.MinLatitude >= 90 {
		return fmt.Errorf("render.min_lat must be in [0, 90), got %g", r.MinLatitude)
	}
	if r.CentralLongitude < -180 || r.CentralLongitude > 180 {
		return fmt.Errorf("render.central_lon must be in [-180, 180], got %g", r.CentralLongitude)
	}
	if r.Alpha < 0 || r.Alpha > 1 {
		return fmt.Errorf("render.alpha must be in [0, 1], got %g", r.Alpha)
	}
	if r.ColorMap == "" {
		return errors.New("render.colormap must be set")
	}
	if r.TrimPadInches < 0 {
		return errors.New("render.trim_pad_in must not be negative")
	}
	return nil
}

func (c *Config) validateService() error {
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.Kafka.SourceTopic == "" {
		return errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if c.Kafka.SinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required")
	}
	if c.Service.BatchSize <= 0 {
		return fmt.Errorf("service.batch_size must be positive, got %d", c.Service.BatchSize)
	}
	return nil
}

func isNotFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
