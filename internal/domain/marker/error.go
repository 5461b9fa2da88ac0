package marker

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("marker not found")
	ErrAudioNotFound = errors.New("audio not found")
	ErrInvalidData   = errors.New("invalid marker data")
	ErrAudioTooLarge = errors.New("audio clip too large")
	ErrEmptyAudio    = errors.New("audio clip is empty")

	ErrInvalidPosition    = fmt.Errorf("%w: coordinates out of range", ErrInvalidData)
	ErrInvalidType        = fmt.Errorf("%w: unknown marker type", ErrInvalidData)
	ErrInvalidAudioStatus = fmt.Errorf("%w: unknown audio status", ErrInvalidData)
	ErrInvalidVolume      = fmt.Errorf("%w: volume must not be negative", ErrInvalidData)
)
