// Package config
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"ecotrace/internal/domain"
	"ecotrace/internal/pricing"
)

const ledgerExtension = ".csv"

// Config is the immutable configuration of one tracking session. Build it
// directly or through Load, then Validate before use.
type Config struct {
	ProjectName           string
	ExperimentDescription string

	// FileName is the shared ledger path. Must end with .csv.
	FileName string `validate:"required"`

	// MeasurePeriod is the sampling interval. Must be strictly positive.
	MeasurePeriod time.Duration `validate:"gt=0"`

	// PUE is the power-usage-effectiveness multiplier applied to raw
	// IT energy. 1 means no facility overhead.
	PUE float64 `validate:"gte=0"`

	// EmissionFactor overrides the country lookup when > 0 (kg CO2/MWh).
	EmissionFactor float64
	CountryCode    string
	Region         string

	// ElectricityPricing is optional; nil disables cost accounting.
	ElectricityPricing pricing.Schedule

	// EncodeFile is the optional obfuscated mirror. Same extension rule.
	EncodeFile string

	// LockTimeout bounds the wait for the ledger's advisory lock.
	// Zero means wait indefinitely.
	LockTimeout time.Duration

	LogLevel  string
	LogFormat string
}

var validate = validator.New()

// Load assembles a Config from the environment, with .env support.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ProjectName:           getEnv("PROJECT_NAME", "default project name"),
		ExperimentDescription: getEnv("EXPERIMENT_DESCRIPTION", "default experiment description"),
		FileName:              getEnv("FILE_NAME", "emission.csv"),
		MeasurePeriod:         10 * time.Second,
		PUE:                   1,
		CountryCode:           os.Getenv("COUNTRY_CODE"),
		Region:                os.Getenv("REGION"),
		EncodeFile:            os.Getenv("ENCODE_FILE"),
		LockTimeout:           30 * time.Second,
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
	}

	if raw := os.Getenv("MEASURE_PERIOD"); raw != "" {
		d, err := parsePeriod(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: MEASURE_PERIOD: %v", domain.ErrConfig, err)
		}
		cfg.MeasurePeriod = d
	}

	if raw := os.Getenv("PUE"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: PUE: %v", domain.ErrConfig, err)
		}
		cfg.PUE = v
	}

	if raw := os.Getenv("EMISSION_FACTOR"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: EMISSION_FACTOR: %v", domain.ErrConfig, err)
		}
		cfg.EmissionFactor = v
	}

	if raw := os.Getenv("ELECTRICITY_PRICING"); raw != "" {
		s, err := pricing.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
		cfg.ElectricityPricing = s
	}

	if raw := os.Getenv("LOCK_TIMEOUT"); raw != "" {
		d, err := parsePeriod(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: LOCK_TIMEOUT: %v", domain.ErrConfig, err)
		}
		cfg.LockTimeout = d
	}

	return cfg, cfg.Validate()
}

// Validate enforces the construction rules. Every failure wraps
// domain.ErrConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}

	if !strings.HasSuffix(c.FileName, ledgerExtension) {
		return fmt.Errorf("%w: file_name %q", domain.ErrInvalidExtension, c.FileName)
	}
	if c.EncodeFile != "" && !strings.HasSuffix(c.EncodeFile, ledgerExtension) {
		return fmt.Errorf("%w: encode_file %q", domain.ErrInvalidExtension, c.EncodeFile)
	}

	if c.ElectricityPricing != nil {
		if err := c.ElectricityPricing.Validate(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrConfig, err)
		}
	}

	return nil
}

// parsePeriod accepts either a Go duration ("10s") or plain seconds ("10").
func parsePeriod(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}

	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a duration or seconds value: %q", raw)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
