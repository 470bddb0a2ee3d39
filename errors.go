package atlaspack

import (
	"errors"
	"fmt"
)

// Sentinel errors for the atlaspack package.
var (
	// ErrInvalidConfig is returned when page dimensions are non-positive or
	// exceed their maximum bounds.
	ErrInvalidConfig = errors.New("atlaspack: invalid configuration")

	// ErrElementTooLarge is returned when an element does not fit even on an
	// empty page grown to its maximum size.
	ErrElementTooLarge = errors.New("atlaspack: element larger than maximum page size")

	// ErrDuplicateName is returned when two sprites share a name.
	ErrDuplicateName = errors.New("atlaspack: duplicate sprite name")

	// ErrNoSprites is returned when a sheet is built from an empty sprite list.
	ErrNoSprites = errors.New("atlaspack: no sprites to pack")
)

// ConfigError describes which option made a configuration invalid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlaspack: invalid configuration." + e.Field + ": " + e.Reason
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// ElementError identifies an element that can never be placed.
type ElementError struct {
	Index         int
	Width, Height int
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("atlaspack: element %d (%dx%d) larger than maximum page size", e.Index, e.Width, e.Height)
}

// Unwrap lets errors.Is match ErrElementTooLarge.
func (e *ElementError) Unwrap() error { return ErrElementTooLarge }
