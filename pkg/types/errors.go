package types

import "fmt"

// ImageLoadError reports a source image that is missing, unreadable or undecodable.
type ImageLoadError struct {
	Source string
	Err    error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("failed to load image %s: %v", e.Source, e.Err)
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// MissingCredentialError reports a backend whose API key is not configured.
type MissingCredentialError struct {
	Backend string
	EnvVar  string
}

func (e *MissingCredentialError) Error() string {
	if e.EnvVar == "" {
		return fmt.Sprintf("%s API key not configured", e.Backend)
	}
	return fmt.Sprintf("%s not found in environment variables", e.EnvVar)
}

// RemoteServiceError wraps any transport or API failure from a vision backend.
type RemoteServiceError struct {
	Backend    string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *RemoteServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s request failed (status %d): %v", e.Backend, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Backend, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// MalformedResponseError reports model text that is not the expected JSON shape.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// InvalidCoordinateError reports a grid label that cannot be mapped to pixels.
type InvalidCoordinateError struct {
	Coordinate string
	Reason     string
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid grid coordinate %q: %s", e.Coordinate, e.Reason)
}
