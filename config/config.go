package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/rotables/core/factory"
	"github.com/kilianp07/rotables/core/metrics"
	"github.com/kilianp07/rotables/core/model"
	"github.com/kilianp07/rotables/core/policy"
	"github.com/kilianp07/rotables/infra/mqtt"
	"github.com/kilianp07/rotables/infra/refdata"
	"github.com/kilianp07/rotables/infra/scoring"
)

// EnvPrefix prefixes environment overrides. K_SCORING__API_KEY sets
// scoring.api_key.
const EnvPrefix = "K_"

type Config struct {
	Hub     string               `json:"hub" validate:"required"`
	RefData refdata.Paths        `json:"refdata"`
	Scoring scoring.Config       `json:"scoring"`
	Policy  policy.Config        `json:"policy"`
	Round   RoundConfig          `json:"round"`
	Journal factory.ModuleConfig `json:"journal"`
	Metrics metrics.Config       `json:"metrics"`
	MQTT    mqtt.Config          `json:"mqtt"`
	Logging LoggingConfig        `json:"logging"`
}

// RoundConfig bounds the hour loop.
type RoundConfig struct {
	Start model.Hour `json:"start"`
	// End is the last hour played. Zero selects the standard horizon.
	End               model.Hour `json:"end"`
	PurchaseLeadHours int        `json:"purchase_lead_hours" validate:"gte=0"`
}

// MQTTEnabled reports whether round notifications should be published.
func (c *Config) MQTTEnabled() bool { return c.MQTT.Broker != "" }

// Load reads path, applies a .env file from the working directory when
// present and then K_ prefixed environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	_ = godotenv.Load()
	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	// The preset fills the policy first so that explicit keys only override
	// the values they name.
	preset, err := policy.Preset(k.String("policy.preset"))
	if err != nil {
		return nil, err
	}
	cfg.Policy = preset
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset sections.
func (c *Config) SetDefaults() {
	c.Hub = strings.ToUpper(strings.TrimSpace(c.Hub))
	if c.RefData.Airports == "" {
		c.RefData.Airports = "data/airports_with_stocks.csv"
	}
	if c.RefData.Aircraft == "" {
		c.RefData.Aircraft = "data/aircraft_types.csv"
	}
	c.Scoring.SetDefaults()
	c.Logging.SetDefaults()
	if c.Journal.Type == "" {
		c.Journal.Type = "jsonl"
	}
	if c.Metrics.Sinks == nil {
		c.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return formatValidationError(err)
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	end := c.Round.End
	if end == (model.Hour{}) {
		end = model.Hour{Day: 29, Hour: 23}
	}
	if !c.Round.Start.Before(end) {
		return fmt.Errorf("round.start %s must be before round.end %s", c.Round.Start, end)
	}
	for _, h := range []model.Hour{c.Round.Start, c.Round.End} {
		if h.Day < 0 || h.Hour < 0 || h.Hour >= model.HoursPerDay {
			return fmt.Errorf("invalid hour %s", h)
		}
	}
	return nil
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}
