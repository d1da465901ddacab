package rule

import (
	"encoding/json"
	"os"
	"reflect"

	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-signals/internal/types"
	"github.com/rxtech-lab/argo-signals/internal/version"
	"github.com/rxtech-lab/argo-signals/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is the rules-file schema version this host understands.
// Files are accepted when major and minor match.
const SchemaVersion = "1.0.0"

// KindName selects a rule behavior in a rules file.
type KindName string

const (
	KindSmaCross         KindName = "sma_cross"
	KindEmaCross         KindName = "ema_cross"
	KindAtrStopCross     KindName = "atr_stop_cross"
	KindBreadthThreshold KindName = "breadth_threshold"
)

// RuleConfig is the on-disk form of one rule.
type RuleConfig struct {
	Name             string                `yaml:"name" json:"name" jsonschema:"title=Name,description=Unique display name of the rule" validate:"required"`
	Kind             KindName              `yaml:"kind" json:"kind" jsonschema:"title=Kind,description=Rule behavior variant" validate:"required,oneof=sma_cross ema_cross atr_stop_cross breadth_threshold"`
	Period           int                   `yaml:"period" json:"period" jsonschema:"title=Period,description=Average period for sma_cross and ema_cross kinds,minimum=0" validate:"gte=0"`
	Threshold        float64               `yaml:"threshold" json:"threshold" jsonschema:"title=Threshold,description=Oscillator threshold for the breadth_threshold kind"`
	Direction        types.Direction       `yaml:"direction" json:"direction" jsonschema:"title=Direction,description=Side of the emitted signal,enum=buy,enum=sell" validate:"required,oneof=buy sell"`
	Priority         int                   `yaml:"priority" json:"priority" jsonschema:"title=Priority,description=Application priority where 1 is highest,minimum=1,maximum=10" validate:"required,gte=1,lte=10"`
	PriorWindow      int                   `yaml:"prior_window" json:"prior_window" jsonschema:"title=Prior Window,description=Trailing close-average window that vetoes the rule when price sits below it,minimum=0" validate:"gte=0"`
	Confirmations    []types.IndicatorType `yaml:"confirmations" json:"confirmations" jsonschema:"title=Confirmations,description=Longer-horizon averages the price must sit above for the confidence bonus"`
	PurchaseLimitPct float64               `yaml:"purchase_limit_pct" json:"purchase_limit_pct" jsonschema:"title=Purchase Limit Percent,description=Portfolio percentage cap for a single entry,minimum=0" validate:"gte=0"`
	AverageDownPct   float64               `yaml:"average_down_pct" json:"average_down_pct" jsonschema:"title=Average Down Percent,description=Percent-of-entry drop qualifying the fixed-percentage averaging tier,minimum=0" validate:"gte=0"`
}

// RulesFile is the on-disk rules document.
type RulesFile struct {
	Version string       `yaml:"version" json:"version" jsonschema:"title=Version,description=Rules file schema version" validate:"required"`
	Rules   []RuleConfig `yaml:"rules" json:"rules" jsonschema:"title=Rules,description=Declarative signal rules" validate:"required,dive"`
}

// RuleSet is a loaded, validated, read-only rule collection.
type RuleSet struct {
	Version string
	Rules   []types.Rule
}

// LoadRules reads and parses a rules file from disk.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeRulesNotLoaded, err, "failed to read rules file %s", path)
	}

	return ParseRules(data)
}

// ParseRules decodes a rules document, gates it on the schema version, and
// resolves each rule's kind. Parsing fails as a whole on a malformed
// document; per-rule runtime failures are the evaluator's concern.
func ParseRules(data []byte) (*RuleSet, error) {
	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRulesNotLoaded, "failed to parse rules file", err)
	}

	if file.Version == "" {
		return nil, errors.New(errors.ErrCodeInvalidVersion, "rules file is missing a version")
	}

	if err := version.CheckVersionCompatibility(SchemaVersion, file.Version); err != nil {
		return nil, err
	}

	set := &RuleSet{
		Version: file.Version,
		Rules:   make([]types.Rule, 0, len(file.Rules)),
	}

	seen := make(map[string]bool, len(file.Rules))

	for _, config := range file.Rules {
		if seen[config.Name] {
			return nil, errors.Newf(errors.ErrCodeDuplicateRule, "duplicate rule name %q", config.Name)
		}

		seen[config.Name] = true

		rule, err := config.toRule()
		if err != nil {
			return nil, err
		}

		if err := rule.Validate(); err != nil {
			return nil, err
		}

		set.Rules = append(set.Rules, rule)
	}

	return set, nil
}

// toRule resolves the declared kind into its tagged variant.
func (c RuleConfig) toRule() (types.Rule, error) {
	var kind types.RuleKind

	switch c.Kind {
	case KindSmaCross:
		if c.Period <= 0 {
			return types.Rule{}, errors.Newf(errors.ErrCodeRuleConfigError, "rule %q: sma_cross requires a positive period", c.Name)
		}

		kind = types.SmaCross{Period: c.Period}
	case KindEmaCross:
		if c.Period <= 0 {
			return types.Rule{}, errors.Newf(errors.ErrCodeRuleConfigError, "rule %q: ema_cross requires a positive period", c.Name)
		}

		kind = types.EmaCross{Period: c.Period}
	case KindAtrStopCross:
		kind = types.AtrStopCross{}
	case KindBreadthThreshold:
		if c.Threshold >= 0 {
			return types.Rule{}, errors.Newf(errors.ErrCodeRuleConfigError, "rule %q: breadth_threshold requires a negative threshold", c.Name)
		}

		kind = types.BreadthThreshold{Threshold: c.Threshold}
	default:
		return types.Rule{}, errors.Newf(errors.ErrCodeUnsupportedRule, "rule %q has unknown kind %q", c.Name, c.Kind)
	}

	return types.Rule{
		Name:             c.Name,
		Kind:             kind,
		Direction:        c.Direction,
		Priority:         c.Priority,
		PriorWindow:      c.PriorWindow,
		Confirmations:    c.Confirmations,
		PurchaseLimitPct: c.PurchaseLimitPct,
		AverageDownPct:   c.AverageDownPct,
	}, nil
}

// GenerateSchema generates a JSON schema for the rules file format.
func (f *RulesFile) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "types.IndicatorType" {
				return &jsonschema.Schema{
					Type: "string",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(f)

	schema.Title = "signal-rules"
	schema.Description = "Configuration schema for declarative signal rules"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the rules file format.
func (f *RulesFile) GenerateSchemaJSON() (string, error) {
	schema, err := f.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyRulesFile returns a RulesFile with only the version set, for schema
// generation and sample emission.
func EmptyRulesFile() RulesFile {
	return RulesFile{
		Version: SchemaVersion,
		Rules:   []RuleConfig{},
	}
}

// DefaultRulesFile returns the reference battery of buy rules.
func DefaultRulesFile() RulesFile {
	return RulesFile{
		Version: SchemaVersion,
		Rules: []RuleConfig{
			{
				Name:             "close below 21-day sma",
				Kind:             KindSmaCross,
				Period:           21,
				Direction:        types.DirectionBuy,
				Priority:         1,
				PriorWindow:      50,
				Confirmations:    []types.IndicatorType{types.IndicatorTypeSMA50, types.IndicatorTypeSMA200},
				PurchaseLimitPct: 2.0,
				AverageDownPct:   10.0,
			},
			{
				Name:             "close below 50-day sma",
				Kind:             KindSmaCross,
				Period:           50,
				Direction:        types.DirectionBuy,
				Priority:         2,
				Confirmations:    []types.IndicatorType{types.IndicatorTypeSMA200},
				PurchaseLimitPct: 2.0,
				AverageDownPct:   10.0,
			},
			{
				Name:             "close below 200-day sma",
				Kind:             KindSmaCross,
				Period:           200,
				Direction:        types.DirectionBuy,
				Priority:         3,
				PurchaseLimitPct: 2.0,
				AverageDownPct:   10.0,
			},
			{
				Name:             "close below 10-day ema",
				Kind:             KindEmaCross,
				Period:           10,
				Direction:        types.DirectionBuy,
				Priority:         2,
				PurchaseLimitPct: 2.0,
				AverageDownPct:   10.0,
			},
			{
				Name:             "close below 20-day ema",
				Kind:             KindEmaCross,
				Period:           20,
				Direction:        types.DirectionBuy,
				Priority:         3,
				PurchaseLimitPct: 2.0,
				AverageDownPct:   10.0,
			},
			{
				Name:             "close below 40-day ema",
				Kind:             KindEmaCross,
				Period:           40,
				Direction:        types.DirectionBuy,
				Priority:         4,
				PurchaseLimitPct: 2.0,
				AverageDownPct:   10.0,
			},
			{
				Name:             "close below volatility stop",
				Kind:             KindAtrStopCross,
				Direction:        types.DirectionBuy,
				Priority:         2,
				PurchaseLimitPct: 2.0,
				AverageDownPct:   10.0,
			},
			{
				Name:             "breadth below -50",
				Kind:             KindBreadthThreshold,
				Threshold:        -50,
				Direction:        types.DirectionBuy,
				Priority:         3,
				PurchaseLimitPct: 2.0,
			},
			{
				Name:             "breadth below -70",
				Kind:             KindBreadthThreshold,
				Threshold:        -70,
				Direction:        types.DirectionBuy,
				Priority:         2,
				PurchaseLimitPct: 2.0,
			},
			{
				Name:             "breadth below -100",
				Kind:             KindBreadthThreshold,
				Threshold:        -100,
				Direction:        types.DirectionBuy,
				Priority:         1,
				PurchaseLimitPct: 2.0,
			},
		},
	}
}
