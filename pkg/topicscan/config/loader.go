package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/topicscan/internal/apperr"
	"github.com/cognicore/topicscan/internal/logger"
)

const (
	configFile   = "config.yaml"
	keywordsFile = "keywords.yaml"
)

// Load reads <dir>/config.yaml over Defaults and applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(dir string, log logger.Logger) (*Config, error) {
	log = logger.OrNop(log)
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	cfg := Defaults()
	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("config file not found, using defaults", logger.String("path", path))
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w: %w", path, apperr.ErrInvalidConfig, err)
		}
		log.Info("config loaded", logger.String("path", path))
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// decode merges YAML onto cfg. Keys absent from the document keep their
// current values.
func (c *Config) decode(data []byte) error {
	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	if c.sections == nil {
		c.sections = make(map[string]struct{})
	}
	for key := range top {
		c.sections[key] = struct{}{}
	}
	return nil
}

const redactedValue = "***"

// YAML renders the merged configuration with credentials masked.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c.redacted())
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(out), nil
}

// redacted returns a copy whose non-empty credentials read "***".
func (c *Config) redacted() *Config {
	cp := *c
	for _, secret := range []*string{
		&cp.Email.AppPassword,
		&cp.AI.AnthropicAPIKey,
		&cp.AI.OpenAIAPIKey,
		&cp.Cache.Redis.Password,
	} {
		if *secret != "" {
			*secret = redactedValue
		}
	}
	return &cp
}

// LoadKeywords reads <dir>/keywords.yaml as category → words. Words are
// lowercased and trimmed; categories whose value is not a list are skipped.
// A missing file yields an empty dictionary.
func LoadKeywords(dir string, log logger.Logger) (map[string][]string, error) {
	log = logger.OrNop(log)
	path := filepath.Join(dir, keywordsFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("keywords file not found", logger.String("path", path))
		return map[string][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read keywords %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse keywords %s: %w: %w", path, apperr.ErrInvalidConfig, err)
	}

	out := make(map[string][]string, len(raw))
	for category, val := range raw {
		list, ok := val.([]any)
		if !ok {
			continue
		}
		words := make([]string, 0, len(list))
		for _, w := range list {
			words = append(words, strings.ToLower(strings.TrimSpace(fmt.Sprint(w))))
		}
		out[category] = words
	}
	log.Info("keywords loaded", logger.Int("categories", len(out)))
	return out, nil
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// godotenv never overrides variables that are already set, so the earlier
// file wins.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// applyEnvOverrides sets every field tagged `env:"NAME"` from a non-empty
// environment variable.
func applyEnvOverrides(cfg any) {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	applyEnvToStruct(v)
}

func applyEnvToStruct(v reflect.Value) {
	if v.Kind() != reflect.Struct {
		return
	}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct {
			applyEnvToStruct(field)
			continue
		}
		name := t.Field(i).Tag.Get("env")
		if name == "" {
			continue
		}
		if val := os.Getenv(name); val != "" {
			setFieldFromString(field, val)
		}
	}
}

func setFieldFromString(field reflect.Value, val string) {
	switch field.Kind() {
	case reflect.String:
		field.SetString(val)
	case reflect.Int, reflect.Int64:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			field.SetInt(i)
		}
	case reflect.Float64:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			field.SetFloat(f)
		}
	case reflect.Bool:
		field.SetBool(parseBool(val))
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
