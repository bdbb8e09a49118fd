package pca9685

import (
	"hfdrivers-go/errcode"
	"hfdrivers-go/types"
)

// Per-channel operations. Mutating calls require the Running state and
// validate every argument before any bus traffic; the mirror is updated
// only after all of a call's register writes succeed. The channel index is
// checked before the lifecycle gate, so an out-of-range index reports
// invalid_channel in every state.

func validChannel(channel uint8) bool { return channel < MaxChannels }

// ConfigureChannel programs the shared frequency and the channel's initial
// duty cycle in one call. The frequency lands on all sixteen outputs; see
// SetFrequency.
func (d *Device) ConfigureChannel(channel uint8, cfg types.ChannelConfig) error {
	if !validChannel(channel) {
		return errcode.InvalidChannel
	}
	if !d.running() {
		return errcode.NotInitialized
	}
	if cfg.FrequencyHz < MinFrequency || cfg.FrequencyHz > MaxFrequency {
		return errcode.InvalidFrequency
	}
	if cfg.InitialDutyCycle < 0.0 || cfg.InitialDutyCycle > 1.0 {
		return errcode.InvalidDutyCycle
	}
	// The counter width is fixed in silicon.
	if cfg.ResolutionBits != 0 && cfg.ResolutionBits != PWMResolution {
		return errcode.InvalidArgument
	}

	if err := d.programFrequency(cfg.FrequencyHz); err != nil {
		return err
	}
	return d.writeDutyCycle(channel, cfg.InitialDutyCycle)
}

// SetDutyCycle programs the channel's timing pair for the given ratio. The
// active flag is untouched; use Start/Stop to manage it.
func (d *Device) SetDutyCycle(channel uint8, dutyCycle float32) error {
	if !validChannel(channel) {
		return errcode.InvalidChannel
	}
	if !d.running() {
		return errcode.NotInitialized
	}
	if dutyCycle < 0.0 || dutyCycle > 1.0 {
		return errcode.InvalidDutyCycle
	}
	return d.writeDutyCycle(channel, dutyCycle)
}

// SetFrequency reprograms the device-wide clock generator. The channel
// argument exists for PWMController symmetry and is validated, but the
// PCA9685 has exactly one prescaler: the new frequency applies to every
// channel simultaneously. A mid-sequence bus failure may leave the chip
// between steps (see programFrequency); the previous frequency/prescale
// mirror is kept unless the whole sequence succeeds.
func (d *Device) SetFrequency(channel uint8, frequencyHz uint32) error {
	if !validChannel(channel) {
		return errcode.InvalidChannel
	}
	if !d.running() {
		return errcode.NotInitialized
	}
	if frequencyHz < MinFrequency || frequencyHz > MaxFrequency {
		return errcode.InvalidFrequency
	}
	return d.programFrequency(frequencyHz)
}

// Start re-asserts the channel's cached timing and marks it active.
// Starting an already-active channel repeats the same writes; it is not an
// error.
func (d *Device) Start(channel uint8) error {
	if !validChannel(channel) {
		return errcode.InvalidChannel
	}
	if !d.running() {
		return errcode.NotInitialized
	}
	st := &d.channels[channel]
	if err := d.setChannelTiming(channel, st.onTime, st.offTime); err != nil {
		return err
	}
	st.active = true
	return nil
}

// Stop forces the "always off" code regardless of the programmed duty and
// marks the channel inactive. The cached duty cycle deliberately survives,
// so a later Start restores the previous output level.
func (d *Device) Stop(channel uint8) error {
	if !validChannel(channel) {
		return errcode.InvalidChannel
	}
	if !d.running() {
		return errcode.NotInitialized
	}
	if err := d.setChannelTiming(channel, 0, PWMMax); err != nil {
		return err
	}
	d.channels[channel].active = false
	return nil
}

// GetDutyCycle returns the last successfully-written duty cycle from the
// mirror; no bus traffic.
func (d *Device) GetDutyCycle(channel uint8) (float32, error) {
	if !validChannel(channel) {
		return 0, errcode.InvalidChannel
	}
	if !d.initialized() {
		return 0, errcode.NotInitialized
	}
	return d.channels[channel].dutyCycle, nil
}

// GetFrequency returns the device-wide frequency; the channel argument is
// validated for symmetry only.
func (d *Device) GetFrequency(channel uint8) (uint32, error) {
	if !validChannel(channel) {
		return 0, errcode.InvalidChannel
	}
	if !d.initialized() {
		return 0, errcode.NotInitialized
	}
	return d.frequencyHz, nil
}

// IsChannelActive reports the mirrored active flag; false for invalid
// channels or an uninitialised handle.
func (d *Device) IsChannelActive(channel uint8) bool {
	if !d.initialized() || !validChannel(channel) {
		return false
	}
	return d.channels[channel].active
}

// ---- batch operations ----

// StartMultiple starts the listed channels in order, stopping at the first
// failure. Channels already started stay started; there is no rollback.
func (d *Device) StartMultiple(channels []uint8) error {
	if len(channels) == 0 {
		return errcode.InvalidArgument
	}
	for _, ch := range channels {
		if err := d.Start(ch); err != nil {
			return err
		}
	}
	return nil
}

// StopMultiple stops the listed channels in order, failing fast.
func (d *Device) StopMultiple(channels []uint8) error {
	if len(channels) == 0 {
		return errcode.InvalidArgument
	}
	for _, ch := range channels {
		if err := d.Stop(ch); err != nil {
			return err
		}
	}
	return nil
}

// SetDutyCycleMultiple applies pairwise duty cycles, failing fast on the
// first per-channel error.
func (d *Device) SetDutyCycleMultiple(channels []uint8, dutyCycles []float32) error {
	if len(channels) == 0 || len(dutyCycles) != len(channels) {
		return errcode.InvalidArgument
	}
	for i, ch := range channels {
		if err := d.SetDutyCycle(ch, dutyCycles[i]); err != nil {
			return err
		}
	}
	return nil
}

// ---- internals ----

// writeDutyCycle converts and writes a validated duty, then updates the
// mirror. All-or-nothing per channel: any of the four register writes
// failing leaves the mirror untouched.
func (d *Device) writeDutyCycle(channel uint8, dutyCycle float32) error {
	onTime, offTime := DutyCycleToTiming(dutyCycle)
	if err := d.setChannelTiming(channel, onTime, offTime); err != nil {
		return err
	}
	st := &d.channels[channel]
	st.dutyCycle = dutyCycle
	st.onTime = onTime
	st.offTime = offTime
	return nil
}

// setChannelTiming writes the channel's four timing registers, low byte
// first, ON pair then OFF pair.
func (d *Device) setChannelTiming(channel uint8, onTime, offTime uint16) error {
	base := channelBase(channel)
	if err := d.writeRegister(base, byte(onTime)); err != nil {
		return err
	}
	if err := d.writeRegister(base+1, byte(onTime>>8)); err != nil {
		return err
	}
	if err := d.writeRegister(base+2, byte(offTime)); err != nil {
		return err
	}
	return d.writeRegister(base+3, byte(offTime>>8))
}
