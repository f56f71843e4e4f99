package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/line-rating-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Conductor reference tables and network snapshot locations.
	ConductorLibraryCSV string
	ConductorRatingsCSV string
	NetworkDir          string

	// Kafka result publishing (optional).
	KafkaBrokers      []string
	KafkaResultsTopic string
	KafkaEnabled      bool

	// Sweep engine tuning.
	SweepWorkers         int
	SensitivityStepFloor float64

	// Temporal load shaping.
	MinLoadHour  float64
	MaxLoadHour  float64
	LoadVariance float64

	// Baseline atmospheric conditions; scenario requests override fields.
	BaseConditions domain.Conditions
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := durationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	workers, err := intOrDefault("SWEEP_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	stepFloor, err := floatOrDefault("SENSITIVITY_STEP_FLOOR", 1.0)
	if err != nil {
		return nil, err
	}

	minLoad, err := floatOrDefault("MIN_LOAD_HOUR", 4)
	if err != nil {
		return nil, err
	}
	maxLoad, err := floatOrDefault("MAX_LOAD_HOUR", 17)
	if err != nil {
		return nil, err
	}
	variance, err := floatOrDefault("LOAD_VARIANCE", 0.15)
	if err != nil {
		return nil, err
	}

	base, err := baseConditions()
	if err != nil {
		return nil, err
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ConductorLibraryCSV: envOrDefault("CONDUCTOR_LIBRARY_CSV", "data/conductor_library.csv"),
		ConductorRatingsCSV: envOrDefault("CONDUCTOR_RATINGS_CSV", "data/conductor_ratings.csv"),
		NetworkDir:          envOrDefault("NETWORK_DIR", "data/network"),

		KafkaBrokers:      splitList(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaResultsTopic: envOrDefault("KAFKA_RESULTS_TOPIC", "contingency-results"),
		KafkaEnabled:      kafkaEnabled,

		SweepWorkers:         workers,
		SensitivityStepFloor: stepFloor,

		MinLoadHour:  minLoad,
		MaxLoadHour:  maxLoad,
		LoadVariance: variance,

		BaseConditions: base,
	}

	if cfg.SweepWorkers < 1 {
		return nil, errors.New("SWEEP_WORKERS must be at least 1")
	}
	if cfg.SensitivityStepFloor <= 0 {
		return nil, errors.New("SENSITIVITY_STEP_FLOOR must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.MinLoadHour >= cfg.MaxLoadHour {
		return nil, fmt.Errorf("MIN_LOAD_HOUR (%g) must precede MAX_LOAD_HOUR (%g)", cfg.MinLoadHour, cfg.MaxLoadHour)
	}

	return cfg, nil
}

// baseConditions builds the baseline atmosphere from BASE_* variables.
// Unset fields stay nil; the pipeline fails with a configuration error
// listing them if a scenario leaves them unresolved.
func baseConditions() (domain.Conditions, error) {
	var c domain.Conditions

	setF := func(key string, dst **float64) error {
		s := os.Getenv(key)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = &v
		return nil
	}

	for key, dst := range map[string]**float64{
		"BASE_AMBIENT_TEMP_C":  &c.AmbientTempC,
		"BASE_WIND_SPEED_FT_S": &c.WindSpeedFtS,
		"BASE_WIND_ANGLE_DEG":  &c.WindAngleDeg,
		"BASE_ELEVATION_FT":    &c.ElevationFt,
		"BASE_LATITUDE_DEG":    &c.LatitudeDeg,
		"BASE_HOUR_OF_DAY":     &c.HourOfDay,
		"BASE_EMISSIVITY":      &c.Emissivity,
		"BASE_ABSORPTIVITY":    &c.Absorptivity,
	} {
		if err := setF(key, dst); err != nil {
			return domain.Conditions{}, err
		}
	}
	if s := os.Getenv("BASE_DATE"); s != "" {
		c.Date = &s
	}
	if s := os.Getenv("BASE_ATMOSPHERE"); s != "" {
		a := domain.AtmosphereClass(s)
		c.Atmosphere = &a
	}
	return c, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationOrDefault(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func intOrDefault(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func floatOrDefault(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}
