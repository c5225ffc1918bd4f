package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config is a tcpscan-config.yaml catalog helper implementation
type Config struct {
	ConfigVersion     string `yaml:"version"`
	Workers           int    `yaml:"workers"`
	TimeoutMs         int    `yaml:"timeout_ms"`
	Ports             string `yaml:"ports"`
	TargetConcurrency int    `yaml:"target_concurrency"`
	Proxy             string `yaml:"proxy"`
	ServerAddress     string `yaml:"server"`
	LogFile           string `yaml:"log_file"`
}

const tcpscanConfigFilename = "tcpscan-config.yaml"

// DefaultConfig is written on first run.
func DefaultConfig() *Config {
	return &Config{
		ConfigVersion:     Version,
		Workers:           DefaultWorkers,
		TimeoutMs:         DefaultTimeoutMs,
		Ports:             DefaultPorts,
		TargetConcurrency: DefaultTargetConcurrency,
		Proxy:             "",
		ServerAddress:     DefaultServerAddress,
		LogFile:           DefaultLogFile,
	}
}

// NewConfig reads the configuration at path, creating it with defaults when
// it does not exist yet. An empty path means ~/.config/tcpscan.
func NewConfig(path string) (*Config, error) {
	if path == "" {
		p, err := getConfigFile()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := WriteConfiguration(path, DefaultConfig()); err != nil {
			return nil, err
		}
	}

	c, err := ReadConfiguration(path)
	if err != nil {
		return nil, err
	}
	c.fillDefaults()
	return c, nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.TimeoutMs <= 0 {
		c.TimeoutMs = def.TimeoutMs
	}
	if c.Ports == "" {
		c.Ports = def.Ports
	}
	if c.TargetConcurrency <= 0 {
		c.TargetConcurrency = def.TargetConcurrency
	}
	if c.ServerAddress == "" {
		c.ServerAddress = def.ServerAddress
	}
	if c.LogFile == "" {
		c.LogFile = def.LogFile
	}
}

func getConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not get home directory")
	}
	configDir := filepath.Join(homeDir, ".config", "tcpscan")
	return filepath.Join(configDir, tcpscanConfigFilename), nil
}

// ReadConfiguration reads the tcpscan configuration file from disk.
func ReadConfiguration(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open config file")
	}
	defer file.Close()

	config := &Config{}
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s", path)
	}
	return config, nil
}

// WriteConfiguration writes the tcpscan configuration to disk
func WriteConfiguration(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "could not create config directory")
	}

	return os.WriteFile(path, data, 0644)
}
