package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/parseltongue-dev/parseltongue/internal/entity"
)

var (
	// ErrInvalidFileSize indicates a negative max file size
	ErrInvalidFileSize = errors.New("invalid max file size")

	// ErrInvalidConcurrency indicates a negative worker count
	ErrInvalidConcurrency = errors.New("invalid concurrency")

	// ErrInvalidLanguage indicates an unsupported default language
	ErrInvalidLanguage = errors.New("invalid default language")

	// ErrInvalidLogLevel indicates an unparseable log level name
	ErrInvalidLogLevel = errors.New("invalid log level")
)

var knownLanguages = map[string]bool{
	string(entity.LangGo):         true,
	string(entity.LangPython):     true,
	string(entity.LangRust):       true,
	string(entity.LangJavaScript): true,
	string(entity.LangTypeScript): true,
	string(entity.LangJava):       true,
	string(entity.LangC):          true,
	string(entity.LangRuby):       true,
	string(entity.LangPHP):        true,
}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateScan(&cfg.Scan); err != nil {
		errs = append(errs, err)
	}

	if err := validateLog(&cfg.Log); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateScan(cfg *ScanConfig) error {
	var errs []error

	if cfg.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size cannot be negative, got %d", ErrInvalidFileSize, cfg.MaxFileSize))
	}

	if cfg.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("%w: concurrency cannot be negative, got %d", ErrInvalidConcurrency, cfg.Concurrency))
	}

	if cfg.DefaultLanguage != "" && !knownLanguages[cfg.DefaultLanguage] {
		errs = append(errs, fmt.Errorf("%w: %q is not a supported language", ErrInvalidLanguage, cfg.DefaultLanguage))
	}

	// Include and exclude patterns are compiled lazily by the streamer,
	// which reports bad globs with the offending pattern attached.

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateLog(cfg *LogConfig) error {
	if cfg.Level == "" {
		return nil
	}
	if _, err := logrus.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, cfg.Level)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
