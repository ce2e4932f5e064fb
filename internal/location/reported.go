package location

import (
	"context"
	"errors"
	"strings"
)

// ReportedDevice is a DeviceLocator answering with what the client already
// measured: either coordinates or the code of its geolocation failure.
// A zero ErrorCode means no failure was reported.
type ReportedDevice struct {
	Lat       *float64
	Lon       *float64
	Accuracy  float64
	ErrorCode ErrorCode
}

func (d ReportedDevice) CurrentPosition(ctx context.Context, _ PositionOptions) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if d.ErrorCode != 0 {
		return Position{}, NewGeolocationError(d.ErrorCode)
	}
	if d.Lat == nil || d.Lon == nil {
		return Position{}, NewGeolocationError(CodeUnsupported)
	}
	return Position{
		Latitude:  *d.Lat,
		Longitude: *d.Lon,
		Accuracy:  d.Accuracy,
	}, nil
}

// ReportedPermission is a PermissionChecker returning the state the client reported.
// An empty value means the client has no permissions API.
type ReportedPermission string

func (p ReportedPermission) QueryGeolocation(context.Context) (PermissionState, error) {
	if strings.TrimSpace(string(p)) == "" {
		return PermissionUnknown, errors.New("permissions API not available")
	}
	return PermissionState(strings.ToLower(strings.TrimSpace(string(p)))), nil
}
