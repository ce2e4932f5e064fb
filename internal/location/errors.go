package location

import "fmt"

// ErrorCode mirrors the geolocation error codes reported by browsers.
type ErrorCode int

const (
	CodeUnknown             ErrorCode = 0
	CodePermissionDenied    ErrorCode = 1
	CodePositionUnavailable ErrorCode = 2
	CodeTimeout             ErrorCode = 3
	CodeUnsupported         ErrorCode = 4
)

const defaultSuggestion = "Please try searching for a city instead."

// GeolocationError is a device geolocation failure with a user-facing remedy.
type GeolocationError struct {
	Code       ErrorCode
	Message    string
	Suggestion string
}

func (e *GeolocationError) Error() string {
	return e.Message
}

// NewGeolocationError returns the user-facing message and suggestion for code.
func NewGeolocationError(code ErrorCode) *GeolocationError {
	switch code {
	case CodePermissionDenied:
		return &GeolocationError{
			Code:       code,
			Message:    "Location access denied. Please enable location access in your browser settings and try again.",
			Suggestion: "Click the location icon in your browser's address bar to allow location access, or search for a city instead.",
		}
	case CodePositionUnavailable:
		return &GeolocationError{
			Code:       code,
			Message:    "Location information is unavailable. This might be due to network issues or GPS being disabled.",
			Suggestion: "Please check your internet connection and GPS settings, or search for a city instead.",
		}
	case CodeTimeout:
		return &GeolocationError{
			Code:       code,
			Message:    "Location request timed out. Please try again or search for a city instead.",
			Suggestion: "Make sure you have a good internet connection and try again.",
		}
	case CodeUnsupported:
		return &GeolocationError{
			Code:       code,
			Message:    "Geolocation is not supported by this browser. Please try searching for a city instead.",
			Suggestion: defaultSuggestion,
		}
	default:
		return &GeolocationError{
			Code:       CodeUnknown,
			Message:    "Unable to retrieve your location. Please try searching for a city instead.",
			Suggestion: "Check your internet connection and try again.",
		}
	}
}

// LocationError is returned when both device and IP geolocation failed.
type LocationError struct {
	Message    string
	Suggestion string
	Device     error
	IP         error
}

func newLocationError(deviceErr, ipErr error) *LocationError {
	return &LocationError{
		Message:    fmt.Sprintf("Location detection failed. %v Also, IP-based location detection is unavailable.", deviceErr),
		Suggestion: "Please search for a city instead or check your internet connection.",
		Device:     deviceErr,
		IP:         ipErr,
	}
}

func (e *LocationError) Error() string {
	return e.Message
}

// Unwrap exposes the device failure for diagnostics.
func (e *LocationError) Unwrap() error {
	return e.Device
}
