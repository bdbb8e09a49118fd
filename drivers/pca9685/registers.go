package pca9685

// Register sub-addresses and bitfields for the PCA9685. The map is
// bit-exact per datasheet; do not reorder or renumber.

const (
	// 7-bit I2C address (A0..A5 strapped low).
	AddressDefault = 0x40

	// General call address; broadcast SWRST is a two-byte write here.
	generalCallAddr = 0x00
	swRstCommand    = 0x06

	// --- Register sub-addresses ---

	regMode1      = 0x00
	regMode2      = 0x01
	regSubAdr1    = 0x02
	regSubAdr2    = 0x03
	regSubAdr3    = 0x04
	regAllCallAdr = 0x05

	// Channel N's four registers start at regLED0OnL + 4N.
	regLED0OnL  = 0x06
	regLED0OnH  = 0x07
	regLED0OffL = 0x08
	regLED0OffH = 0x09

	regAllLEDOnL  = 0xFA
	regAllLEDOnH  = 0xFB
	regAllLEDOffL = 0xFC
	regAllLEDOffH = 0xFD
	regPreScale   = 0xFE
	regTestMode   = 0xFF

	// --- MODE1 bits ---

	mode1Restart = 0x80
	mode1ExtClk  = 0x40
	mode1AI      = 0x20
	mode1Sleep   = 0x10
	mode1Sub1    = 0x08
	mode1Sub2    = 0x04
	mode1Sub3    = 0x02
	mode1AllCall = 0x01

	// --- MODE2 bits ---

	mode2Invrt  = 0x10
	mode2OCH    = 0x08
	mode2OutDrv = 0x04
	mode2OutNE1 = 0x02
	mode2OutNE0 = 0x01
)

// Device-wide limits.
const (
	// MaxChannels is the channel count of the part.
	MaxChannels = 16

	// PWMResolution is the counter width in bits.
	PWMResolution = 12

	// PWMMax is the top counter value (2^12 - 1). 4095 in the OFF counter
	// with 0 in ON is the chip's designated "always off" code; the mirror
	// pair is "always on".
	PWMMax = 4095

	// InternalOscFreq is the free-running internal oscillator in Hz.
	InternalOscFreq = 25_000_000

	// MinFrequency/MaxFrequency bound the PWM output range reachable
	// through the prescaler with the internal oscillator.
	MinFrequency = 24
	MaxFrequency = 1526

	prescaleMin = 3
	prescaleMax = 255
)

func channelBase(channel uint8) byte {
	return byte(regLED0OnL + 4*uint(channel))
}
