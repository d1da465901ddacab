package engine

import (
	"encoding/json"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the host-supplied engine configuration.
type Config struct {
	// SnapshotPath is the DuckDB file backing the durable snapshot cache.
	// ":memory:" keeps it ephemeral.
	SnapshotPath string `yaml:"snapshot_path" json:"snapshot_path" jsonschema:"title=Snapshot Path,description=Path of the DuckDB file backing the durable snapshot cache,required" validate:"required"`
	// RulesPath is the rules yaml file the host loads at startup.
	RulesPath string `yaml:"rules_path" json:"rules_path" jsonschema:"title=Rules Path,description=Path of the versioned signal rules yaml file,required" validate:"required"`
	// DerivedWindowMinutes bounds the in-memory derived indicator cache.
	// Zero falls back to the 30 minute default.
	DerivedWindowMinutes int `yaml:"derived_window_minutes" json:"derived_window_minutes" jsonschema:"title=Derived Window Minutes,description=Sliding validity window of the in-memory derived indicator cache in minutes,minimum=0" validate:"gte=0"`
	// Timeframe is the fetch shape for every instrument.
	Timeframe types.Timeframe `yaml:"timeframe" json:"timeframe" jsonschema:"title=Timeframe,description=Fetch period and bar interval for every instrument"`
	// Instruments is the evaluation universe.
	Instruments []string `yaml:"instruments" json:"instruments" jsonschema:"title=Instruments,description=Instrument symbols to evaluate,required" validate:"required,min=1,dive,required"`
	// Provider selects the registered market data provider by name.
	Provider string `yaml:"provider" json:"provider" jsonschema:"title=Provider,description=Name of the registered market data provider,required" validate:"required"`
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid engine config", err)
	}

	if err := c.Timeframe.Validate(); err != nil {
		return err
	}

	return nil
}

// ParseConfig parses and validates a yaml config document.
func ParseConfig(data []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// LoadConfig reads and parses a config file from disk.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return ParseConfig(data)
}

// GenerateSchema generates a JSON schema for the Config
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
	}

	schema := reflector.Reflect(c)

	schema.Title = "signal-engine-config"
	schema.Description = "Configuration schema for the signal engine"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the Config
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a Config with default values
func EmptyConfig() Config {
	return Config{
		SnapshotPath: "signals.db",
		RulesPath:    "rules.yaml",
		Timeframe:    types.DefaultTimeframe(),
	}
}

// TestConfig returns an ephemeral config for tests.
func TestConfig(instruments ...string) Config {
	return Config{
		SnapshotPath:         ":memory:",
		RulesPath:            "rules.yaml",
		DerivedWindowMinutes: 30,
		Timeframe:            types.DefaultTimeframe(),
		Instruments:          instruments,
		Provider:             "polygon",
	}
}
