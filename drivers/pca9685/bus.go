package pca9685

import "hfdrivers-go/errcode"

// Register access. Each helper is exactly one bus transaction; transport
// failures come back as hardware_error with the cause attached. No retries
// here; retry policy belongs to the transport or the caller.

func (d *Device) writeRegister(reg, value byte) error {
	d.w[0] = reg
	d.w[1] = value
	if err := d.bus.Tx(d.addr, d.w[:2], nil); err != nil {
		return errcode.Wrap(errcode.HardwareError, "write_register", err)
	}
	return nil
}

func (d *Device) readRegister(reg byte) (byte, error) {
	d.w[0] = reg
	if err := d.bus.Tx(d.addr, d.w[:1], d.r[:1]); err != nil {
		return 0, errcode.Wrap(errcode.HardwareError, "read_register", err)
	}
	return d.r[0], nil
}

// modifyRegister is a read-modify-write for bitmask registers.
func (d *Device) modifyRegister(reg byte, set, clear byte) error {
	cur, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, (cur|set)&^clear)
}

// generalCall broadcasts on the reserved general-call address. The SWRST
// payload is the documented two-byte sequence [0x00, 0x06].
func (d *Device) generalCall(cmd byte) error {
	d.w[0] = 0x00
	d.w[1] = cmd
	if err := d.bus.Tx(generalCallAddr, d.w[:2], nil); err != nil {
		return errcode.Wrap(errcode.HardwareError, "general_call", err)
	}
	return nil
}
