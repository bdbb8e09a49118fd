// Package config holds the document types supplied on the "config/hal"
// bus topic.
package config

// HALConfig lists the devices the HAL service should manage.
type HALConfig struct {
	Devices []Device `json:"devices" yaml:"devices"`
}

// Device describes one physical or logical device.
type Device struct {
	ID     string `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"` // builder key, e.g. "pca9685"
	Params any    `json:"params,omitempty" yaml:"params,omitempty"`
	BusRef BusRef `json:"bus_ref,omitempty" yaml:"bus_ref,omitempty"` // for shared-bus devices (e.g. I²C)
}

// BusRef names a bus instance configured in the platform layer.
type BusRef struct {
	Type string `json:"type" yaml:"type"` // e.g. "i2c"
	ID   string `json:"id" yaml:"id"`     // e.g. "i2c0"
}
