// Package yamlutil is the YAML seam for the configuration layer: strict
// decoding for config files and marshalling for the config command.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// maxInputSize caps decoded input. Config files are small; anything
// approaching this size is not a config file.
const maxInputSize = 1 << 20

var (
	ErrEmptyData      = errors.New("yamlutil: empty data")
	ErrNilDestination = errors.New("yamlutil: destination is nil")
	ErrInputTooLarge  = errors.New("yamlutil: input too large")
)

// UnmarshalStrict decodes data into v, rejecting unknown fields so a
// config typo surfaces as an error instead of silently falling back to
// defaults.
func UnmarshalStrict(data []byte, v any) error {
	if len(data) == 0 {
		return ErrEmptyData
	}
	if len(data) > maxInputSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrInputTooLarge, len(data), maxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// Marshal serializes v to YAML.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
