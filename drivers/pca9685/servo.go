package pca9685

import (
	"time"

	"hfdrivers-go/errcode"
	"hfdrivers-go/types"
	"hfdrivers-go/x/mathx"
	"hfdrivers-go/x/timex"
)

// Servo maps a position in [0,1] onto a pulse width for one channel of any
// PWMController. Hobby servos expect a 1–2 ms pulse at 50 Hz; both bounds
// and the frequency are configurable.
type Servo struct {
	pwm     types.PWMController
	channel uint8
	freqHz  uint32
	minDuty float32
	maxDuty float32
}

// ServoConfig describes the channel and pulse envelope. Zero values take
// the hobby-servo defaults.
type ServoConfig struct {
	Channel     uint8
	FrequencyHz uint32        // default 50
	MinPulse    time.Duration // default 1 ms
	MaxPulse    time.Duration // default 2 ms
}

// NewServo binds a servo mapping to a controller channel.
func NewServo(pwm types.PWMController, cfg ServoConfig) *Servo {
	if cfg.FrequencyHz == 0 {
		cfg.FrequencyHz = 50
	}
	if cfg.MinPulse == 0 {
		cfg.MinPulse = time.Millisecond
	}
	if cfg.MaxPulse == 0 {
		cfg.MaxPulse = 2 * time.Millisecond
	}
	period := float32(timex.PeriodFromHz(cfg.FrequencyHz))
	return &Servo{
		pwm:     pwm,
		channel: cfg.Channel,
		freqHz:  cfg.FrequencyHz,
		minDuty: float32(cfg.MinPulse.Nanoseconds()) / period,
		maxDuty: float32(cfg.MaxPulse.Nanoseconds()) / period,
	}
}

// Configure programs the channel for servo use at the neutral position and
// starts it.
func (s *Servo) Configure() error {
	err := s.pwm.ConfigureChannel(s.channel, types.ChannelConfig{
		FrequencyHz:      s.freqHz,
		InitialDutyCycle: s.duty(0.5),
	})
	if err != nil {
		return err
	}
	return s.pwm.Start(s.channel)
}

// SetPosition moves to a position in [0,1]; out-of-range inputs are
// rejected, matching the controller's duty-cycle contract.
func (s *Servo) SetPosition(pos float32) error {
	if pos < 0.0 || pos > 1.0 {
		return errcode.InvalidArgument
	}
	return s.pwm.SetDutyCycle(s.channel, s.duty(pos))
}

func (s *Servo) duty(pos float32) float32 {
	d := s.minDuty + pos*(s.maxDuty-s.minDuty)
	return mathx.Clamp(d, float32(0.0), float32(1.0))
}
