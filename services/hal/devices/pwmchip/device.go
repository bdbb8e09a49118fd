package pwmchip

import (
	"context"

	"hfdrivers-go/drivers/pca9685"
	"hfdrivers-go/errcode"
	"hfdrivers-go/services/hal"
	"hfdrivers-go/types"
)

// Device adapts a PWMController to the HAL capability surface.
type Device struct {
	id     string
	pwm    types.PWMController
	addr   uint16
	domain string
	name   string
}

func (d *Device) ID() string { return d.id }

func (d *Device) Capabilities() []hal.CapabilitySpec {
	return []hal.CapabilitySpec{{
		Domain: d.domain,
		Kind:   types.KindPWM,
		Name:   d.name,
		Info: types.Info{
			SchemaVersion: 1,
			Driver:        "pca9685",
			Detail: types.PWMChipInfo{
				Address:   d.addr,
				Channels:  d.pwm.MaxChannels(),
				MinFreqHz: pca9685.MinFrequency,
				MaxFreqHz: pca9685.MaxFrequency,
			},
		},
	}}
}

func (d *Device) Init(ctx context.Context) error { return d.pwm.Initialize() }

func (d *Device) Close() error { return d.pwm.Deinitialize() }

func (d *Device) Control(kind types.Kind, method string, payload any) (any, error) {
	if kind != types.KindPWM {
		return nil, errcode.Unsupported
	}
	switch method {
	case "configure":
		p, code := hal.As[types.PWMConfigure](payload)
		if code != "" {
			return nil, code
		}
		return nil, d.pwm.ConfigureChannel(p.Channel, types.ChannelConfig{
			FrequencyHz:      p.FrequencyHz,
			InitialDutyCycle: p.DutyCycle,
		})

	case "set_duty":
		p, code := hal.As[types.PWMSetDuty](payload)
		if code != "" {
			return nil, code
		}
		return nil, d.pwm.SetDutyCycle(p.Channel, p.DutyCycle)

	case "set_frequency":
		p, code := hal.As[types.PWMSetFrequency](payload)
		if code != "" {
			return nil, code
		}
		return nil, d.pwm.SetFrequency(p.Channel, p.FrequencyHz)

	case "start":
		p, code := hal.As[types.PWMChannelSel](payload)
		if code != "" {
			return nil, code
		}
		return nil, d.pwm.Start(p.Channel)

	case "stop":
		p, code := hal.As[types.PWMChannelSel](payload)
		if code != "" {
			return nil, code
		}
		return nil, d.pwm.Stop(p.Channel)

	case "start_multiple":
		p, code := hal.As[types.PWMChannelList](payload)
		if code != "" {
			return nil, code
		}
		return nil, d.pwm.StartMultiple(p.Channels)

	case "stop_multiple":
		p, code := hal.As[types.PWMChannelList](payload)
		if code != "" {
			return nil, code
		}
		return nil, d.pwm.StopMultiple(p.Channels)

	case "set_duty_multiple":
		p, code := hal.As[types.PWMSetDutyMultiple](payload)
		if code != "" {
			return nil, code
		}
		return nil, d.pwm.SetDutyCycleMultiple(p.Channels, p.DutyCycles)

	case "get":
		p, code := hal.As[types.PWMChannelSel](payload)
		if code != "" {
			return nil, code
		}
		duty, err := d.pwm.GetDutyCycle(p.Channel)
		if err != nil {
			return nil, err
		}
		freq, err := d.pwm.GetFrequency(p.Channel)
		if err != nil {
			return nil, err
		}
		return types.PWMChannelState{
			Channel:     p.Channel,
			Active:      d.pwm.IsChannelActive(p.Channel),
			DutyCycle:   duty,
			FrequencyHz: freq,
		}, nil

	case "sleep":
		c, err := d.chip()
		if err != nil {
			return nil, err
		}
		return nil, c.Sleep()

	case "wake":
		c, err := d.chip()
		if err != nil {
			return nil, err
		}
		return nil, c.Wakeup()

	case "output_enable":
		p, code := hal.As[types.PWMOutputEnable](payload)
		if code != "" {
			return nil, code
		}
		c, err := d.chip()
		if err != nil {
			return nil, err
		}
		return nil, c.SetOutputEnable(p.Enabled)

	case "output_driver":
		p, code := hal.As[types.PWMOutputDriver](payload)
		if code != "" {
			return nil, code
		}
		c, err := d.chip()
		if err != nil {
			return nil, err
		}
		return nil, c.SetOutputDriver(p.TotemPole)

	case "output_invert":
		p, code := hal.As[types.PWMOutputInvert](payload)
		if code != "" {
			return nil, code
		}
		c, err := d.chip()
		if err != nil {
			return nil, err
		}
		return nil, c.SetOutputInvert(p.Inverted)

	default:
		return nil, errcode.Unsupported
	}
}

// chipOps is the chip-specific surface the capability contract keeps off
// the generic interface.
type chipOps interface {
	Sleep() error
	Wakeup() error
	SetOutputEnable(enabled bool) error
	SetOutputDriver(totemPole bool) error
	SetOutputInvert(inverted bool) error
}

func (d *Device) chip() (chipOps, error) {
	if c, ok := d.pwm.(chipOps); ok {
		return c, nil
	}
	return nil, errcode.Unsupported
}
