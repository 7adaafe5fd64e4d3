package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for merging.
const (
	keyInput      = "input"
	keyOutput     = "output"
	keyProcessing = "processing"
	keyLogging    = "logging"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyInput:      true,
	keyOutput:     true,
	keyProcessing: true,
	keyLogging:    true,
}

// MergeYAML loads a YAML file and merges it onto the target Config section
// by section. Fields named in the file replace the target's values; fields
// and sections absent from the file are left unchanged.
func MergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in MergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", overlayPath, err)
	}

	// Discover which top-level keys are present in the overlay.
	var overlay map[string]interface{}
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing config YAML from %s: %w", overlayPath, err)
	}

	// Empty or comment-only file: nothing to merge.
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		// Re-marshal the single section so we can unmarshal it onto the
		// strongly-typed target field.
		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling config section %q: %w", key, marshalErr)
		}

		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying config section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes raw YAML onto a copy of the matching section of
// target, so unspecified fields keep their current values.
func unmarshalSection(target *Config, key string, data []byte) error {
	switch key {
	case keyInput:
		v := target.Input
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Input = v
		return nil
	case keyOutput:
		v := target.Output
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Output = v
		return nil
	case keyProcessing:
		v := target.Processing
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Processing = v
		return nil
	case keyLogging:
		v := target.Logging
		if err := yaml.Unmarshal(data, &v); err != nil {
			return err
		}
		target.Logging = v
		return nil
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}
