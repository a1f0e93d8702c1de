package config

// Config represents the complete parseltongue configuration.
// It can be loaded from .parseltongue/config.yml with environment variable overrides.
type Config struct {
	Scan ScanConfig `yaml:"scan" mapstructure:"scan"`
	Log  LogConfig  `yaml:"log" mapstructure:"log"`
}

// ScanConfig controls file selection and pipeline behavior.
type ScanConfig struct {
	Include         []string `yaml:"include" mapstructure:"include"`                   // glob patterns a file must match when non-empty
	Exclude         []string `yaml:"exclude" mapstructure:"exclude"`                   // glob patterns to reject
	MaxFileSize     int64    `yaml:"max_file_size" mapstructure:"max_file_size"`       // bytes; 0 disables the cutoff
	Concurrency     int      `yaml:"concurrency" mapstructure:"concurrency"`           // worker pool size; 0 uses the default
	DefaultLanguage string   `yaml:"default_language" mapstructure:"default_language"` // tried for extensionless files
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // logrus level name, e.g. "warning"
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Include: nil, // empty include list accepts every supported file
			Exclude: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
			},
			MaxFileSize: 1 << 20,
			Concurrency: 0,
		},
		Log: LogConfig{
			Level: "warning",
		},
	}
}
