package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/martinsuchenak/fortimcp/internal/fortigate"
)

// ErrNoDevices reports a devices file whose fortigate.devices mapping is
// absent or empty.
var ErrNoDevices = errors.New("at least one device must be configured under 'fortigate.devices'")

// DevicesFile is the JSON document describing the managed appliances.
type DevicesFile struct {
	FortiGate FortiGateSection `json:"fortigate"`
}

// FortiGateSection maps device id to its connection settings.
type FortiGateSection struct {
	Devices map[string]fortigate.DeviceConfig `json:"devices"`
}

// LoadDevices reads and validates the devices file. Loading fails if the
// fortigate.devices mapping is absent or empty, or if any device fails
// validation.
func LoadDevices(path string) (map[string]fortigate.DeviceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading devices file: %w", err)
	}

	var file DevicesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid JSON in devices file %s: %w", path, err)
	}

	devices := file.FortiGate.Devices
	if len(devices) == 0 {
		return nil, fmt.Errorf("devices file %s: %w", path, ErrNoDevices)
	}

	for deviceID, deviceConfig := range devices {
		deviceConfig.ApplyDefaults()
		if err := deviceConfig.Validate(deviceID); err != nil {
			return nil, err
		}
		devices[deviceID] = deviceConfig
	}

	return devices, nil
}

// SaveDevices writes the devices mapping back to path, pretty-printed.
func SaveDevices(path string, devices map[string]fortigate.DeviceConfig) error {
	file := DevicesFile{FortiGate: FortiGateSection{Devices: devices}}
	data, err := json.MarshalIndent(&file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding devices file: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing devices file: %w", err)
	}
	return nil
}

// WriteExample writes a starter devices file users can customize.
func WriteExample(path string) error {
	example := map[string]fortigate.DeviceConfig{
		"default": {
			Host:      "192.168.1.1",
			Port:      443,
			Username:  "admin",
			Password:  "your_password",
			VDOM:      "root",
			VerifySSL: false,
			Timeout:   30,
		},
		"backup": {
			Host:      "192.168.1.2",
			Port:      443,
			APIToken:  "your_api_token_here",
			VDOM:      "root",
			VerifySSL: false,
			Timeout:   30,
		},
	}
	return SaveDevices(path, example)
}
