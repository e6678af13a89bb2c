package editor

import "errors"

var (
	// ErrUnknownParameter is returned for a filter or effect name that has no declared range.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrUnknownPreset is returned when a preset name is not registered.
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrInvalidBackground is returned for an unparsable background description.
	ErrInvalidBackground = errors.New("invalid background")

	// ErrUnknownHandle is returned when a crop handle name cannot be parsed.
	ErrUnknownHandle = errors.New("unknown crop handle")
)
