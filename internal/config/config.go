package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/adcirc-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	GridFile  string
	FieldFile string
	Stations  []domain.Station

	KafkaBrokers    []string
	KafkaSinkTopic  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// VDatum conversion configuration.
	VDatumEnabled        bool
	VDatumBaseURL        string
	VDatumTimeout        time.Duration
	VDatumCacheSize      int
	VDatumSourceVertical string
	VDatumTargetVertical string
	VDatumHorizontal     string
	VDatumUnit           string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	vdatumTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("VDATUM_TIMEOUT", "10s"))
	if err != nil || vdatumTimeout <= 0 {
		return nil, errors.New("invalid VDATUM_TIMEOUT")
	}

	cacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("VDATUM_CACHE_SIZE", "1000"))
	if err != nil || cacheSize <= 0 {
		return nil, errors.New("invalid VDATUM_CACHE_SIZE")
	}

	stations, err := domain.ParseStations(os.Getenv("ADCIRC_STATIONS"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADCIRC_STATIONS: %w", err)
	}

	cfg := &Config{
		GridFile:        os.Getenv("ADCIRC_GRID_FILE"),
		FieldFile:       os.Getenv("ADCIRC_FIELD_FILE"),
		Stations:        stations,
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "adcirc-station-series"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		VDatumEnabled:        os.Getenv("VDATUM_ENABLED") == "true",
		VDatumBaseURL:        sharedcfg.EnvOrDefault("VDATUM_BASE_URL", "https://vdatum.noaa.gov/vdatumweb/api/tidal"),
		VDatumTimeout:        vdatumTimeout,
		VDatumCacheSize:      cacheSize,
		VDatumSourceVertical: sharedcfg.EnvOrDefault("VDATUM_SOURCE_VERTICAL", "LMSL"),
		VDatumTargetVertical: sharedcfg.EnvOrDefault("VDATUM_TARGET_VERTICAL", "NAVD88"),
		VDatumHorizontal:     sharedcfg.EnvOrDefault("VDATUM_HORIZONTAL", "NAD83_2011"),
		VDatumUnit:           sharedcfg.EnvOrDefault("VDATUM_UNIT", "m"),
	}

	if cfg.GridFile == "" {
		return nil, errors.New("ADCIRC_GRID_FILE is required")
	}
	if cfg.FieldFile == "" {
		return nil, errors.New("ADCIRC_FIELD_FILE is required")
	}
	if len(cfg.Stations) == 0 {
		return nil, errors.New("ADCIRC_STATIONS is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.VDatumUnit != "m" && cfg.VDatumUnit != "ft" {
		return nil, errors.New("VDATUM_UNIT must be m or ft")
	}

	return cfg, nil
}

// DatumFrames returns the frame configuration for station datum shifts.
func (c *Config) DatumFrames() domain.DatumFrames {
	return domain.DatumFrames{
		Horizontal:     c.VDatumHorizontal,
		SourceVertical: c.VDatumSourceVertical,
		TargetVertical: c.VDatumTargetVertical,
		Unit:           c.VDatumUnit,
	}
}
