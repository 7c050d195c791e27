package fortigate

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundErrorMessage(t *testing.T) {
	err := &NotFoundError{DeviceID: "edge3", Available: []string{"edge1", "edge2"}}

	want := "device 'edge3' not found, available devices: [edge1, edge2]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Error("NotFoundError should match ErrDeviceNotFound")
	}
	if errors.Is(err, ErrDeviceExists) {
		t.Error("NotFoundError should not match ErrDeviceExists")
	}
}

func TestDuplicateErrorMessage(t *testing.T) {
	err := &DuplicateError{DeviceID: "edge1"}

	want := "device 'edge1' already exists"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrDeviceExists) {
		t.Error("DuplicateError should match ErrDeviceExists")
	}
}

func TestTransportErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{DeviceID: "edge1", Method: "GET", Path: "monitor/system/status", Err: cause}

	if err.Error() != "Network error: connection refused" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("TransportError should unwrap to its cause")
	}

	var transport *TransportError
	wrapped := fmt.Errorf("probing: %w", err)
	if !errors.As(wrapped, &transport) {
		t.Fatal("errors.As should find TransportError through wrapping")
	}
	if transport.DeviceID != "edge1" {
		t.Errorf("DeviceID = %q, want edge1", transport.DeviceID)
	}
}

func TestRemoteErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *RemoteError
		want string
	}{
		{
			name: "with body",
			err:  &RemoteError{StatusCode: 400, Body: `{"error":"invalid"}`},
			want: `API request failed: 400: {"error":"invalid"}`,
		},
		{
			name: "without body",
			err:  &RemoteError{StatusCode: 500},
			want: "API request failed: 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{DeviceID: "edge1", Reason: "must have a 'host' field"}
	want := "device 'edge1': must have a 'host' field"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
