package pca9685

import (
	"hfdrivers-go/errcode"
	"hfdrivers-go/types"
)

// Capability negotiation: the PCA9685 has no phase shifter, fade engine,
// complementary pairing, dead-time insertion or event lines. These report
// not_supported deterministically and touch nothing, so generic callers can
// probe for features without special-casing the chip.

func (d *Device) SetPhase(channel uint8, phaseDegrees float32) error {
	return errcode.NotSupported
}

func (d *Device) ConfigureFade(channel uint8, cfg types.FadeConfig) error {
	return errcode.NotSupported
}

func (d *Device) StartFade(channel uint8) error {
	return errcode.NotSupported
}

func (d *Device) ConfigureComplementary(primary, secondary uint8, cfg types.ComplementaryConfig) error {
	return errcode.NotSupported
}

func (d *Device) SetDeadTime(channel uint8, deadTimeNs uint16) error {
	return errcode.NotSupported
}

func (d *Device) RegisterCallback(channel uint8, cb types.PWMCallbackType, fn types.PWMCallback) error {
	return errcode.NotSupported
}

func (d *Device) UnregisterCallback(channel uint8, cb types.PWMCallbackType) error {
	return errcode.NotSupported
}
