// Package config reads the optional JSON configuration file of the test harness.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// File is the content of a configuration file. Every property is optional; command-line flags
// take precedence over anything set here.
type File struct {
	URL            string              `json:"url,omitempty"`
	TimeoutMS      ldvalue.OptionalInt `json:"timeoutMs,omitempty"`
	ReadyTimeoutMS ldvalue.OptionalInt `json:"readyTimeoutMs,omitempty"`
	Parallel       ldvalue.OptionalInt `json:"parallel,omitempty"`
	Run            []string            `json:"run,omitempty"`
	Skip           []string            `json:"skip,omitempty"`
	XLSXReport     string              `json:"xlsxReport,omitempty"`
	Debug          bool                `json:"debug,omitempty"`
}

// Load reads and parses a configuration file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("malformed config file %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return File{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return f, nil
}

func (f File) validate() error {
	for name, v := range map[string]ldvalue.OptionalInt{
		"timeoutMs":      f.TimeoutMS,
		"readyTimeoutMs": f.ReadyTimeoutMS,
		"parallel":       f.Parallel,
	} {
		if v.IsDefined() && v.IntValue() < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// Millis converts an optional millisecond count to a duration, or returns the fallback if it
// is not defined.
func Millis(v ldvalue.OptionalInt, fallback time.Duration) time.Duration {
	if !v.IsDefined() {
		return fallback
	}
	return time.Duration(v.IntValue()) * time.Millisecond
}
