// Package config loads the YAML run configuration. The result is built once
// in cmd and passed by value into constructors; nothing below cmd reads files
// or the environment on its own.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"mining-dispatch/internal/data"
	"mining-dispatch/internal/logger"
	"mining-dispatch/internal/model"
	"mining-dispatch/internal/storage"
	"mining-dispatch/internal/strategy"
)

const dateLayout = "2006-01-02"

// Config is the on-disk configuration shape (YAML).
type Config struct {
	// Optional: load facility parameters from a separate YAML. Fields set in
	// Facility override the file.
	FacilityFile string           `yaml:"facility_file"`
	Facility     FacilityConfig   `yaml:"facility"`
	Contract     *ContractConfig  `yaml:"contract"`
	Period       PeriodConfig     `yaml:"period"`
	Data         DataConfig       `yaml:"data"`
	Strategies   []StrategyConfig `yaml:"strategies" validate:"dive"`
	Investment   float64          `yaml:"investment" validate:"gte=0"`
	Output       OutputConfig     `yaml:"output"`
	Logger       logger.Config    `yaml:"logger"`
	API          APIConfig        `yaml:"api"`
}

type FacilityConfig struct {
	Name             string  `yaml:"name"`
	SizeMW           float64 `yaml:"size_mw"`
	EfficiencyWPerTH float64 `yaml:"efficiency_w_per_th"`
}

type ContractConfig struct {
	SizeMW   float64 `yaml:"size_mw" validate:"gt=0"`
	PriceMWh float64 `yaml:"price_mwh" validate:"gt=0"`
	Block    string  `yaml:"block" validate:"omitempty,oneof=7x24 5x16 2x16 7x8"`
	Timezone string  `yaml:"timezone"`
	Start    string  `yaml:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string  `yaml:"end" validate:"omitempty,datetime=2006-01-02"` // inclusive
}

type PeriodConfig struct {
	Start string `yaml:"start" validate:"required,datetime=2006-01-02"`
	End   string `yaml:"end" validate:"required,datetime=2006-01-02"`
}

type DataConfig struct {
	ElectricityCSV    string              `yaml:"electricity_csv"`
	HashpriceCSV      string              `yaml:"hashprice_csv"`
	HashpriceSource   string              `yaml:"hashprice_source" validate:"omitempty,oneof=file hashrateindex"`
	Snapshot          string              `yaml:"snapshot"`
	GapPolicy         string              `yaml:"gap_policy" validate:"omitempty,oneof=flag ffill interpolate fallback"`
	FallbackHashprice float64             `yaml:"fallback_hashprice" validate:"gte=0"`
	HashrateIndex     HashrateIndexConfig `yaml:"hashrateindex"`
}

type HashrateIndexConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

// StrategyConfig names one strategy run. Label is the display name; Strategy
// is the registry key.
type StrategyConfig struct {
	Label    string         `yaml:"name" validate:"required"`
	Strategy string         `yaml:"strategy" validate:"required"`
	Params   map[string]any `yaml:"params"`
}

type OutputConfig struct {
	CSV     string           `yaml:"csv"`
	Parquet string           `yaml:"parquet"`
	S3      storage.S3Config `yaml:"s3"`
}

type APIConfig struct {
	Port           string        `yaml:"port"`
	Env            string        `yaml:"env" validate:"omitempty,oneof=development production test"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	FacilityDir    string        `yaml:"facility_dir"`
	ResultTTL      time.Duration `yaml:"result_ttl"`
}

// DefaultStrategies is the comparison set used when a config lists none.
func DefaultStrategies() []StrategyConfig {
	return []StrategyConfig{
		{Label: "Simple Threshold", Strategy: "threshold", Params: map[string]any{"min_profit_threshold": 0.0}},
		{Label: "Percentile 60%", Strategy: "percentile", Params: map[string]any{"percentile": 60.0}},
		{Label: "Percentile 70%", Strategy: "percentile", Params: map[string]any{"percentile": 70.0}},
		{Label: "Rolling Average", Strategy: "rolling_average", Params: map[string]any{"window_hours": 24, "threshold_multiplier": 1.1}},
		{Label: "Avoid Peak Hours", Strategy: "peak_avoidance", Params: map[string]any{"peak_hours": []any{14, 15, 16, 17, 18, 19}}},
	}
}

// Load reads, merges, defaults and validates the config at path. getenv may
// be nil.
func Load(path string, getenv func(string) string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if getenv != nil {
		c.ApplyEnv(getenv)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.FacilityFile != "" {
		loaded, err := LoadFacilityFile(resolveRelative(path, c.FacilityFile))
		if err != nil {
			return nil, err
		}
		c.Facility = MergeFacility(loaded, c.Facility)
	}
	c.Data.ElectricityCSV = resolveRelative(path, c.Data.ElectricityCSV)
	c.Data.HashpriceCSV = resolveRelative(path, c.Data.HashpriceCSV)
	c.Data.Snapshot = resolveRelative(path, c.Data.Snapshot)
	return &c, nil
}

// ApplyEnv overlays secrets and deployment settings from the environment.
// getenv is os.Getenv in the binaries.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("HASHRATEINDEX_API_KEY"); v != "" {
		c.Data.HashrateIndex.APIKey = v
	}
	if v := getenv("AWS_S3_BUCKET"); v != "" {
		c.Output.S3.Bucket = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("API_PORT"); v != "" {
		c.API.Port = v
	}
	if v := getenv("API_ENV"); v != "" {
		c.API.Env = v
	}
	if v := getenv("FACILITY_DIR"); v != "" {
		c.API.FacilityDir = v
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		c.API.AllowedOrigins = strings.Split(v, ",")
	}
}

// ApplyDefaults fills optional fields left empty.
func (c *Config) ApplyDefaults() {
	if len(c.Strategies) == 0 {
		c.Strategies = DefaultStrategies()
	}
	if c.Data.GapPolicy == "" {
		c.Data.GapPolicy = string(data.GapFlag)
	}
	if c.Data.HashpriceSource == "" {
		c.Data.HashpriceSource = "file"
	}
	if c.Contract != nil && c.Contract.Block == "" {
		c.Contract.Block = string(model.Block7x24)
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Encoding == "" {
		c.Logger.Encoding = "console"
	}
	if c.API.Port == "" {
		c.API.Port = "8080"
	}
	if c.API.Env == "" {
		c.API.Env = "development"
	}
	if c.API.FacilityDir == "" {
		c.API.FacilityDir = filepath.Join("examples", "facilities")
	}
	if c.API.ResultTTL <= 0 {
		c.API.ResultTTL = time.Hour
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	facility := c.Facility.ToModel()
	if err := facility.Validate(); err != nil {
		return fmt.Errorf("facility config invalid: %w", err)
	}
	start, end, err := c.Period.Range()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("period.end %s is before period.start %s", c.Period.End, c.Period.Start)
	}
	if c.Contract != nil {
		contract, err := c.Contract.ToModel()
		if err != nil {
			return err
		}
		if err := contract.Validate(facility); err != nil {
			return fmt.Errorf("contract config invalid: %w", err)
		}
	}
	if c.Data.Snapshot == "" {
		if c.Data.ElectricityCSV == "" {
			return errors.New("data.electricity_csv is required")
		}
		switch c.Data.HashpriceSource {
		case "file":
			if c.Data.HashpriceCSV == "" {
				return errors.New("data.hashprice_csv is required when hashprice_source is file")
			}
		case "hashrateindex":
			if c.Data.HashrateIndex.APIKey == "" {
				return errors.New("data.hashrateindex.api_key is required (or set HASHRATEINDEX_API_KEY)")
			}
		}
	}
	if _, err := c.BuildStrategies(strategy.Default()); err != nil {
		return err
	}
	return nil
}

func (f FacilityConfig) ToModel() model.FacilityParams {
	return model.FacilityParams{
		Name:             f.Name,
		SizeMW:           f.SizeMW,
		EfficiencyWPerTH: f.EfficiencyWPerTH,
	}
}

func (c ContractConfig) ToModel() (*model.Contract, error) {
	block, err := model.ParseContractBlock(c.Block)
	if err != nil {
		return nil, err
	}
	out := &model.Contract{
		SizeMW:   c.SizeMW,
		PriceMWh: c.PriceMWh,
		Block:    block,
		Timezone: c.Timezone,
	}
	if c.Start != "" {
		if out.Start, err = time.Parse(dateLayout, c.Start); err != nil {
			return nil, fmt.Errorf("%w: contract start: %v", model.ErrInvalidContractParams, err)
		}
	}
	if c.End != "" {
		end, err := time.Parse(dateLayout, c.End)
		if err != nil {
			return nil, fmt.Errorf("%w: contract end: %v", model.ErrInvalidContractParams, err)
		}
		// Inclusive through 23:00 like period.end.
		out.End = end.AddDate(0, 0, 1)
	}
	return out, nil
}

// ContractModel returns nil when no contract is configured.
func (c *Config) ContractModel() (*model.Contract, error) {
	if c.Contract == nil {
		return nil, nil
	}
	return c.Contract.ToModel()
}

func (p PeriodConfig) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, p.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("period.start: %w", err)
	}
	end, err := time.Parse(dateLayout, p.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("period.end: %w", err)
	}
	return start, end, nil
}

// NamedStrategy is a built strategy with its display label.
type NamedStrategy struct {
	Label    string
	Strategy strategy.Strategy
}

func (c *Config) BuildStrategies(reg *strategy.Registry) ([]NamedStrategy, error) {
	out := make([]NamedStrategy, 0, len(c.Strategies))
	for i, sc := range c.Strategies {
		s, err := reg.Build(sc.Strategy, sc.Params)
		if err != nil {
			return nil, fmt.Errorf("strategies[%d] %q: %w", i, sc.Label, err)
		}
		label := sc.Label
		if label == "" {
			label = s.Name()
		}
		out = append(out, NamedStrategy{Label: label, Strategy: s})
	}
	return out, nil
}

// FindStrategy returns the configured strategy whose label or registry key
// matches name, case-insensitively.
func (c *Config) FindStrategy(name string) (StrategyConfig, bool) {
	for _, sc := range c.Strategies {
		if strings.EqualFold(sc.Label, name) || strings.EqualFold(sc.Strategy, name) {
			return sc, true
		}
	}
	return StrategyConfig{}, false
}

func (h HashrateIndexConfig) ToClientConfig() data.HashrateIndexConfig {
	return data.HashrateIndexConfig{
		BaseURL:           h.BaseURL,
		APIKey:            h.APIKey,
		Timeout:           h.Timeout,
		RequestsPerMinute: h.RequestsPerMinute,
		CacheTTL:          h.CacheTTL,
	}
}

type facilityFileWrapper struct {
	Facility FacilityConfig `yaml:"facility"`
}

// LoadFacilityFile reads a facility preset: a YAML file with a top-level
// facility section.
func LoadFacilityFile(path string) (FacilityConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FacilityConfig{}, err
	}
	var w facilityFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return FacilityConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Facility, nil
}

// MergeFacility overlays non-zero fields from override onto base.
func MergeFacility(base, override FacilityConfig) FacilityConfig {
	out := base
	if override.Name != "" {
		out.Name = override.Name
	}
	if override.SizeMW != 0 {
		out.SizeMW = override.SizeMW
	}
	if override.EfficiencyWPerTH != 0 {
		out.EfficiencyWPerTH = override.EfficiencyWPerTH
	}
	return out
}

// resolveRelative prefers paths relative to the config file's directory and
// falls back to the path as given (relative to cwd).
func resolveRelative(configPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(filepath.Dir(configPath), p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

// NewProvider assembles the market data provider described by the data
// section, wrapped in the configured gap policy.
func (c *Config) NewProvider(log *logger.Logger) (data.Provider, error) {
	policy, err := data.ParseGapPolicy(c.Data.GapPolicy)
	if err != nil {
		return nil, err
	}

	var inner data.Provider
	switch {
	case c.Data.Snapshot != "":
		inner = data.SnapshotProvider{Path: c.Data.Snapshot}
	case c.Data.HashpriceSource == "hashrateindex":
		inner = data.RemoteProvider{
			ElectricityCSV: c.Data.ElectricityCSV,
			Hashprice:      data.NewHashrateIndexClient(c.Data.HashrateIndex.ToClientConfig(), log),
		}
	default:
		inner = data.FileProvider{
			ElectricityCSV: c.Data.ElectricityCSV,
			HashpriceCSV:   c.Data.HashpriceCSV,
		}
	}
	return data.ResolvingProvider{
		Provider:          inner,
		Policy:            policy,
		FallbackHashprice: c.Data.FallbackHashprice,
		Log:               log,
	}, nil
}
