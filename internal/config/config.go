// Package config loads the command line tool configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/DisposaBoy/JsonConfigReader"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v3"
)

const (
	// DefaultBufferSize is the default output window size.
	DefaultBufferSize = 1 << 16
	// MinBufferSize is the smallest output window accepted.
	MinBufferSize = 1 << 12
)

// Config is the structure of the configuration file
type Config struct {
	LogLevel   string `json:"logLevel"   yaml:"log_level"`
	LogFormat  string `json:"logFormat"  yaml:"log_format"`
	BufferSize int    `json:"bufferSize" yaml:"buffer_size"`
}

// Default is the configuration used when no file is found
var Default = Config{
	LogLevel:   "info",
	LogFormat:  "default",
	BufferSize: DefaultBufferSize,
}

// DefaultLocations lists the files tried when no file is given explicitly.
func DefaultLocations() []string {
	var locations []string
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".rangecoder.conf"))
	}
	return append(locations, "/etc/rangecoder.conf")
}

// LoadConfig reads filename over config. Files named *.yaml or *.yml are
// YAML, anything else is JSON with comments. config is left untouched
// unless the file loads and validates.
func LoadConfig(filename string, config *Config) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	loaded := *config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&loaded)
	default:
		err = json.NewDecoder(JsonConfigReader.New(f)).Decode(&loaded)
	}
	if err != nil {
		return errors.Wrapf(err, "invalid config file %s", filename)
	}
	if err = loaded.Validate(); err != nil {
		return err
	}
	*config = loaded
	return nil
}

// Find loads the explicit file if given, otherwise the first default
// location that exists. Defaults are returned when nothing is found.
func Find(explicit string) (Config, error) {
	config := Default
	if explicit != "" {
		err := LoadConfig(explicit, &config)
		return config, err
	}
	for _, location := range DefaultLocations() {
		err := LoadConfig(location, &config)
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return config, err
		}
	}
	return config, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.BufferSize < MinBufferSize {
		return errors.Errorf("bufferSize %d is below the minimum of %d", c.BufferSize, MinBufferSize)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "default", "json":
	default:
		return errors.Errorf("unknown logFormat %q", c.LogFormat)
	}
	return nil
}
