package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Dataset configures where data is read from and written to.
type Dataset struct {
	Input      string `toml:"input"`
	GeoJSONOut string `toml:"geojson_out"`
	PNGOut     string `toml:"png_out"`
	// OutputDir receives outputs without an explicit path, named after the input.
	OutputDir string `toml:"output_dir"`

	LatVar    string `toml:"lat_var"`
	LonVar    string `toml:"lon_var"`
	FieldVar  string `toml:"field_var"`
	TimeIndex int    `toml:"time_index"`

	ValidMin   float64 `toml:"valid_min"`
	ValidMax   float64 `toml:"valid_max"`
	SampleStep int     `toml:"sample_step"`

	Date       string `toml:"date"`
	ValueLabel string `toml:"value_label"`
	DateLabel  string `toml:"date_label"`
}

// Render holds the map layout and styling.
type Render struct {
	DPI              int     `toml:"dpi"`
	WidthInches      float64 `toml:"width_in"`
	HeightInches     float64 `toml:"height_in"`
	CentralLongitude float64 `toml:"central_lon"`
	MinLatitude      float64 `toml:"min_lat"`
	ColorMap         string  `toml:"colormap"`
	ReverseColorMap  bool    `toml:"colormap_reverse"`
	Alpha            float64 `toml:"alpha"`
	Title            string  `toml:"title"`
	// ColorBarLabel overrides the label built from the field's long_name
	// and units attributes.
	ColorBarLabel    string  `toml:"colorbar_label"`
	TrimPadInches    float64 `toml:"trim_pad_in"`
}

// Basemap points at Natural Earth style shapefiles. An empty path disables
// that layer. SourceURL is where `seaice basemap` downloads the defaults from.
type Basemap struct {
	Land      string `toml:"land"`
	Coastline string `toml:"coastline"`
	Borders   string `toml:"borders"`
	CacheSize int    `toml:"cache_size"`
	SourceURL string `toml:"source_url"`
}

// Default basemap locations, populated by `seaice basemap`.
const (
	DefaultBasemapDir       = "data/naturalearth"
	DefaultLandShapefile    = DefaultBasemapDir + "/ne_110m_land.shp"
	DefaultCoastShapefile   = DefaultBasemapDir + "/ne_110m_coastline.shp"
	DefaultBordersShapefile = DefaultBasemapDir + "/ne_110m_admin_0_boundary_lines_land.shp"
	DefaultBasemapSourceURL = "https://naciscdn.org/naturalearth/110m"
)

// Kafka configures the service topics.
type Kafka struct {
	Brokers     []string `toml:"brokers"`
	SourceTopic string   `toml:"source_topic"`
	SinkTopic   string   `toml:"sink_topic"`
	GroupID     string   `toml:"group_id"`
}

// Service holds settings of the long-running process. Durations are only
// read from the environment.
type Service struct {
	HTTPAddr  string `toml:"http_addr"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	BatchSize int    `toml:"batch_size"`

	ShutdownTimeout    time.Duration `toml:"-"`
	BatchFlushInterval time.Duration `toml:"-"`
}

// Config holds all settings. Values are resolved as defaults, then the
// optional TOML file, then environment variables.
type Config struct {
	Dataset Dataset `toml:"dataset"`
	Render  Render  `toml:"render"`
	Basemap Basemap `toml:"basemap"`
	Kafka   Kafka   `toml:"kafka"`
	Service Service `toml:"service"`
}

// DefaultTitle is the map title template; {date} is replaced with the
// product date.
const DefaultTitle = "{date} Northern Hemisphere Sea Ice Concentration\n(OSI SAF ICDR v3.0)"

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Dataset: Dataset{
			OutputDir:  ".",
			LatVar:     "lat",
			LonVar:     "lon",
			FieldVar:   "ice_conc",
			ValidMin:   0,
			ValidMax:   100,
			SampleStep: 1,
			ValueLabel: "海冰密集度(%)",
			DateLabel:  "数据日期",
		},
		Render: Render{
			DPI:              300,
			WidthInches:      10,
			HeightInches:     10,
			CentralLongitude: 0,
			MinLatitude:      60,
			ColorMap:         "Blues",
			ReverseColorMap:  true,
			Alpha:            0.9,
			Title:            DefaultTitle,
			TrimPadInches:    0.1,
		},
		Basemap: Basemap{
			Land:      DefaultLandShapefile,
			Coastline: DefaultCoastShapefile,
			Borders:   DefaultBordersShapefile,
			CacheSize: 8,
			SourceURL: DefaultBasemapSourceURL,
		},
		Kafka: Kafka{
			Brokers:     []string{"localhost:9092"},
			SourceTopic: "sea-ice-datasets",
			SinkTopic:   "sea-ice-artifacts",
			GroupID:     "sea-ice-etl",
		},
		Service: Service{
			HTTPAddr:           ":8080",
			LogLevel:           "info",
			LogFormat:          "json",
			BatchSize:          50,
			ShutdownTimeout:    10 * time.Second,
			BatchFlushInterval: 500 * time.Millisecond,
		},
	}
}

// Load builds the configuration. path may be empty; a path that does not
// exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	d := &c.Dataset
	d.Input = sharedcfg.EnvOrDefault("SEAICE_INPUT", d.Input)
	d.GeoJSONOut = sharedcfg.EnvOrDefault("SEAICE_GEOJSON_OUT", d.GeoJSONOut)
	d.PNGOut = sharedcfg.EnvOrDefault("SEAICE_PNG_OUT", d.PNGOut)
	d.OutputDir = sharedcfg.EnvOrDefault("SEAICE_OUTPUT_DIR", d.OutputDir)
	d.LatVar = sharedcfg.EnvOrDefault("SEAICE_LAT_VAR", d.LatVar)
	d.LonVar = sharedcfg.EnvOrDefault("SEAICE_LON_VAR", d.LonVar)
	d.FieldVar = sharedcfg.EnvOrDefault("SEAICE_FIELD_VAR", d.FieldVar)
	d.Date = sharedcfg.EnvOrDefault("SEAICE_DATE", d.Date)
	d.ValueLabel = sharedcfg.EnvOrDefault("SEAICE_VALUE_LABEL", d.ValueLabel)
	d.DateLabel = sharedcfg.EnvOrDefault("SEAICE_DATE_LABEL", d.DateLabel)

	r := &c.Render
	r.ColorMap = sharedcfg.EnvOrDefault("RENDER_COLORMAP", r.ColorMap)
	r.Title = sharedcfg.EnvOrDefault("RENDER_TITLE", r.Title)
	r.ColorBarLabel = sharedcfg.EnvOrDefault("RENDER_COLORBAR_LABEL", r.ColorBarLabel)

	b := &c.Basemap
	b.Land = sharedcfg.EnvOrDefault("BASEMAP_LAND", b.Land)
	b.Coastline = sharedcfg.EnvOrDefault("BASEMAP_COASTLINE", b.Coastline)
	b.Borders = sharedcfg.EnvOrDefault("BASEMAP_BORDERS", b.Borders)
	b.SourceURL = sharedcfg.EnvOrDefault("BASEMAP_SOURCE_URL", b.SourceURL)

	k := &c.Kafka
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		k.Brokers = sharedcfg.ParseBrokers(v)
	}
	k.SourceTopic = sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", k.SourceTopic)
	k.SinkTopic = sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", k.SinkTopic)
	k.GroupID = sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", k.GroupID)

	s := &c.Service
	s.HTTPAddr = sharedcfg.EnvOrDefault("HTTP_ADDR", s.HTTPAddr)
	s.LogLevel = sharedcfg.EnvOrDefault("LOG_LEVEL", s.LogLevel)
	s.LogFormat = sharedcfg.EnvOrDefault("LOG_FORMAT", s.LogFormat)

	ints := []struct {
		key string
		dst *int
	}{
		{"SEAICE_TIME_INDEX", &d.TimeIndex},
		{"SEAICE_SAMPLE_STEP", &d.SampleStep},
		{"RENDER_DPI", &r.DPI},
		{"BASEMAP_CACHE_SIZE", &b.CacheSize},
	}
	for _, e := range ints {
		if err := envInt(e.key, e.dst); err != nil {
			return err
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"SEAICE_VALID_MIN", &d.ValidMin},
		{"SEAICE_VALID_MAX", &d.ValidMax},
		{"RENDER_WIDTH_IN", &r.WidthInches},
		{"RENDER_HEIGHT_IN", &r.HeightInches},
		{"RENDER_CENTRAL_LON", &r.CentralLongitude},
		{"RENDER_MIN_LAT", &r.MinLatitude},
		{"RENDER_ALPHA", &r.Alpha},
		{"RENDER_TRIM_PAD_IN", &r.TrimPadInches},
	}
	for _, e := range floats {
		if err := envFloat(e.key, e.dst); err != nil {
			return err
		}
	}

	if err := envBool("RENDER_COLORMAP_REVERSE", &r.ReverseColorMap); err != nil {
		return err
	}

	return c.applyServiceEnv()
}

// applyServiceEnv uses the shared parsers, which fall back to their own
// defaults, so they only run when the variable is set.
func (c *Config) applyServiceEnv() error {
	s := &c.Service
	if _, ok := os.LookupEnv("SHUTDOWN_TIMEOUT"); ok {
		d, err := sharedcfg.ParseShutdownTimeout()
		if err != nil {
			return err
		}
		s.ShutdownTimeout = d
	}
	if _, ok := os.LookupEnv("BATCH_SIZE"); ok {
		n, err := sharedcfg.ParseBatchSize()
		if err != nil {
			return err
		}
		s.BatchSize = n
	}
	if _, ok := os.LookupEnv("BATCH_FLUSH_INTERVAL"); ok {
		d, err := sharedcfg.ParseBatchFlushInterval()
		if err != nil {
			return err
		}
		s.BatchFlushInterval = d
	}
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %q is not an integer", key, v)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q is not a number", key, v)
	}
	*dst = f
	return nil
}

func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %q is not a boolean", key, v)
	}
	*dst = b
	return nil
}
