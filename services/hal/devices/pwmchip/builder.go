// Package pwmchip exposes a PCA9685 PWM controller as a HAL capability of
// kind "pwm". Other controller chips can register sibling builders; the
// bus-facing surface only speaks types.PWMController.
package pwmchip

import (
	"context"

	"hfdrivers-go/drivers/pca9685"
	"hfdrivers-go/errcode"
	"hfdrivers-go/services/hal"
)

func init() { hal.RegisterBuilder("pca9685", builder{}) }

type Params struct {
	Address uint16 `json:"address,omitempty"` // 7-bit; chip default when zero
	OEPin   int    `json:"oe_pin,omitempty"`  // 0 = not wired
	Domain  string `json:"domain,omitempty"`
	Name    string `json:"name,omitempty"`
}

type builder struct{}

func (builder) Build(ctx context.Context, in hal.BuilderInput) (hal.Device, error) {
	p := paramsFrom(in.Params)
	if p.Name == "" {
		p.Name = in.ID
	}
	if p.Domain == "" {
		p.Domain = "io"
	}

	if in.Res.Buses == nil || in.BusRef.ID == "" {
		return nil, errcode.UnknownBus
	}
	i2c, ok := in.Res.Buses.ByID(in.BusRef.ID)
	if !ok {
		return nil, errcode.UnknownBus
	}

	cfg := pca9685.Config{Address: p.Address}
	if p.OEPin != 0 {
		if in.Res.Pins == nil {
			return nil, errcode.UnknownPin
		}
		pin, ok := in.Res.Pins.ByNumber(p.OEPin)
		if !ok {
			return nil, errcode.UnknownPin
		}
		cfg.OutputEnable = pin
	}

	dev := pca9685.New(i2c, cfg)
	return &Device{
		id:     in.ID,
		pwm:    dev,
		addr:   dev.Address(),
		domain: p.Domain,
		name:   p.Name,
	}, nil
}

// paramsFrom tolerates typed Params as well as decoded maps. JSON decodes
// numbers as float64, YAML as int; both are accepted.
func paramsFrom(v any) Params {
	if p, ok := v.(Params); ok {
		return p
	}
	var p Params
	m, ok := v.(map[string]any)
	if !ok {
		return p
	}
	if n, ok := asInt(m["address"]); ok {
		p.Address = uint16(n)
	}
	if n, ok := asInt(m["oe_pin"]); ok {
		p.OEPin = n
	}
	if s, ok := m["domain"].(string); ok {
		p.Domain = s
	}
	if s, ok := m["name"].(string); ok {
		p.Name = s
	}
	return p
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case int:
		return x, true
	case int64:
		return int(x), true
	case uint64:
		return int(x), true
	}
	return 0, false
}
