package errcode

// Code is a stable, caller-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Driver-facing codes.
	NotInitialized   Code = "not_initialized"
	InvalidArgument  Code = "invalid_argument"
	InvalidChannel   Code = "invalid_channel"
	InvalidFrequency Code = "invalid_frequency"
	InvalidDutyCycle Code = "invalid_duty_cycle"
	HardwareError    Code = "hardware_error"
	NotSupported     Code = "not_supported"
	InvalidState     Code = "invalid_state" // e.g. re-initialising a deinitialised handle

	// Service/control-plane codes.
	Unsupported       Code = "unsupported"
	InvalidPayload    Code = "invalid_payload"
	UnknownCapability Code = "unknown_capability"
	HALNotReady       Code = "hal_not_ready"
	UnknownBus        Code = "unknown_bus"
	UnknownPin        Code = "unknown_pin"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap tags a low-level cause with a code and the failing operation.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Is reports whether err carries the given code.
func Is(err error, c Code) bool { return Of(err) == c }
