package pca9685

import (
	"math"

	"hfdrivers-go/x/mathx"
)

// Timing codec: pure conversions between caller-level units (Hz, duty
// ratio) and the chip's register encoding.

// CalculatePrescale derives the prescaler divisor for a PWM frequency:
//
//	prescale = round(osc / (4096 × freq)) − 1
//
// clamped to the register's documented [3, 255] range. Out-of-range
// requests saturate rather than fail; that mirrors the hardware limit, and
// range validation happens before callers get here.
func CalculatePrescale(frequencyHz uint32) uint8 {
	raw := float64(InternalOscFreq)/(4096.0*float64(frequencyHz)) - 1.0
	p := int32(math.Round(raw))
	return uint8(mathx.Clamp(p, prescaleMin, prescaleMax))
}

// DutyCycleToTiming converts a duty ratio into the (on, off) edge counters
// for one 4096-count period. The phase policy is "rise at count 0":
//
//	duty ≤ 0 → (0, 4095)    the chip's "always off" code
//	duty ≥ 1 → (4095, 0)    the chip's "always on" code
//	else     → (0, ⌊duty × 4095⌋)
//
// The interior case truncates, matching the established register encoding;
// the half-scale point lands on 2047, not 2048. No channel-to-channel phase
// offset is ever introduced.
func DutyCycleToTiming(dutyCycle float32) (onTime, offTime uint16) {
	switch {
	case dutyCycle <= 0.0:
		return 0, PWMMax
	case dutyCycle >= 1.0:
		return PWMMax, 0
	default:
		return 0, uint16(dutyCycle * PWMMax)
	}
}
