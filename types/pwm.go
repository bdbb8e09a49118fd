package types

// ------------------------
// PWM controller capability
// ------------------------

// ChannelConfig carries the initial settings applied when a channel is
// configured. FrequencyHz is validated against the controller's supported
// range. ResolutionBits is informational for fixed-resolution parts; a
// controller rejects values it cannot honour.
type ChannelConfig struct {
	FrequencyHz      uint32  `json:"frequency_hz"`
	InitialDutyCycle float32 `json:"initial_duty_cycle"` // 0..1
	ResolutionBits   uint8   `json:"resolution_bits,omitempty"`
}

// FadeConfig describes a hardware fade between two duty cycles.
type FadeConfig struct {
	StartDutyCycle float32 `json:"start_duty_cycle"`
	EndDutyCycle   float32 `json:"end_duty_cycle"`
	DurationMs     uint32  `json:"duration_ms"`
}

// ComplementaryConfig pairs two channels as complementary outputs.
type ComplementaryConfig struct {
	DeadTimeNs uint16 `json:"dead_time_ns"`
	InvertSec  bool   `json:"invert_secondary,omitempty"`
}

// PWMCallbackType selects which edge/event a callback fires on.
type PWMCallbackType uint8

const (
	PWMCallbackPeriodElapsed PWMCallbackType = iota
	PWMCallbackFadeComplete
	PWMCallbackFault
)

// PWMCallback is invoked from the controller's event context.
type PWMCallback func(channel uint8, cb PWMCallbackType)

// PWMController is the generic multi-channel PWM capability. Chip drivers
// implement it so callers can swap controllers without caring which silicon
// sits behind the channels.
//
// Operations that a given chip cannot provide must deterministically return
// errcode.NotSupported and perform no side effects; that is capability
// negotiation, not failure.
//
// Implementations are synchronous and not safe for concurrent use; the
// caller owns serialisation of one controller handle.
type PWMController interface {
	// Lifecycle.
	Initialize() error
	Deinitialize() error

	// Per-channel control.
	ConfigureChannel(channel uint8, cfg ChannelConfig) error
	SetDutyCycle(channel uint8, dutyCycle float32) error
	// SetFrequency takes a channel for interface symmetry, but controllers
	// with a single clock generator (e.g. PCA9685) apply it to every
	// channel at once. Read the concrete driver's documentation.
	SetFrequency(channel uint8, frequencyHz uint32) error
	Start(channel uint8) error
	Stop(channel uint8) error

	// Cached state queries; no bus traffic once initialised.
	GetDutyCycle(channel uint8) (float32, error)
	GetFrequency(channel uint8) (uint32, error)
	IsChannelActive(channel uint8) bool
	MaxChannels() uint8

	// Advanced features; optional per chip.
	SetPhase(channel uint8, phaseDegrees float32) error
	ConfigureFade(channel uint8, cfg FadeConfig) error
	StartFade(channel uint8) error
	ConfigureComplementary(primary, secondary uint8, cfg ComplementaryConfig) error
	SetDeadTime(channel uint8, deadTimeNs uint16) error
	RegisterCallback(channel uint8, cb PWMCallbackType, fn PWMCallback) error
	UnregisterCallback(channel uint8, cb PWMCallbackType) error

	// Batch helpers; fail fast on the first per-channel error.
	StartMultiple(channels []uint8) error
	StopMultiple(channels []uint8) error
	SetDutyCycleMultiple(channels []uint8, dutyCycles []float32) error
}

// ---- bus-facing PWM payload shapes ----

type PWMConfigure struct {
	Channel     uint8   `json:"channel"`
	FrequencyHz uint32  `json:"frequency_hz"`
	DutyCycle   float32 `json:"duty_cycle"`
}

type PWMSetDuty struct {
	Channel   uint8   `json:"channel"`
	DutyCycle float32 `json:"duty_cycle"`
}

type PWMSetFrequency struct {
	Channel     uint8  `json:"channel,omitempty"` // informational; the clock is shared
	FrequencyHz uint32 `json:"frequency_hz"`
}

type PWMChannelSel struct {
	Channel uint8 `json:"channel"`
}

type PWMChannelList struct {
	Channels []uint8 `json:"channels"`
}

type PWMSetDutyMultiple struct {
	Channels   []uint8   `json:"channels"`
	DutyCycles []float32 `json:"duty_cycles"`
}

type PWMOutputEnable struct {
	Enabled bool `json:"enabled"`
}

type PWMOutputDriver struct {
	TotemPole bool `json:"totem_pole"`
}

type PWMOutputInvert struct {
	Inverted bool `json:"inverted"`
}

type PWMChipInfo struct {
	Address   uint16 `json:"address"`
	Channels  uint8  `json:"channels"`
	MinFreqHz uint32 `json:"min_freq_hz"`
	MaxFreqHz uint32 `json:"max_freq_hz"`
}

type PWMChannelState struct {
	Channel     uint8   `json:"channel"`
	Active      bool    `json:"active"`
	DutyCycle   float32 `json:"duty_cycle"`
	FrequencyHz uint32  `json:"frequency_hz"`
}
