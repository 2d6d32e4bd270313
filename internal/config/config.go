// Package config loads the declarative peripheral configuration and
// turns it into constructed devices. Loading is strict twice over: the
// YAML decoder rejects unknown top-level keys, and the decoded document
// is validated against an embedded CUE schema before any driver code
// sees it, so a malformed stanza fails with a schema path instead of a
// driver panic.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Config is the decoded configuration file. Protocols and Peripherals
// keep their file order, which is also their initialization order.
type Config struct {
	Simulate    *bool            `yaml:"simulate"`
	Protocols   []map[string]any `yaml:"protocols"`
	Peripherals []map[string]any `yaml:"peripherals"`
	Report      ReportConfig     `yaml:"report"`
	History     HistoryConfig    `yaml:"history"`
}

// ReportConfig selects the optional report sinks.
type ReportConfig struct {
	Log    string        `yaml:"log"`
	HTML   string        `yaml:"html"`
	MQTT   *MQTTConfig   `yaml:"mqtt"`
	Influx *InfluxConfig `yaml:"influx"`
}

// MQTTConfig describes the broker for live result publication.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	QoS      int    `yaml:"qos"`
}

// InfluxConfig describes the InfluxDB v2 endpoint for result metrics.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// HistoryConfig locates the run history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Load reads, decodes and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateSchema unifies the decoded document with the embedded CUE
// schema and reports the first violation with its path.
func validateSchema(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("config schema has no #Config: %w", err)
	}

	unified := def.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("config does not match schema: %s", cueerrors.Details(err, nil))
	}
	return nil
}

// check enforces the constraints the schema cannot express: instance
// names must be unique across both categories, because names key both
// resource ownership and device lookup.
func (c *Config) check() error {
	seen := make(map[string]string)
	for _, cat := range []struct {
		name    string
		stanzas []map[string]any
	}{
		{CategoryProtocols, c.Protocols},
		{CategoryPeripherals, c.Peripherals},
	} {
		for _, stanza := range cat.stanzas {
			name, _ := stanza["name"].(string)
			if name == "" {
				return fmt.Errorf("config: a %s stanza is missing its name", cat.name)
			}
			if prev, ok := seen[name]; ok {
				return fmt.Errorf("config: duplicate device name %q (declared in %s and %s)", name, prev, cat.name)
			}
			seen[name] = cat.name
		}
	}
	return nil
}
