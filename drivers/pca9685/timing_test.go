package pca9685

import "testing"

func TestCalculatePrescale(t *testing.T) {
	cases := []struct {
		freqHz uint32
		want   uint8
	}{
		{24, 253},
		{50, 121},
		{200, 30},
		{1000, 5},
		{1526, 3},
		// Saturation outside the usable range.
		{1, 255},
		{10_000, 3},
	}
	for _, c := range cases {
		if got := CalculatePrescale(c.freqHz); got != c.want {
			t.Errorf("CalculatePrescale(%d) = %d, want %d", c.freqHz, got, c.want)
		}
	}
}

func TestCalculatePrescaleMonotonic(t *testing.T) {
	prev := CalculatePrescale(MinFrequency)
	for f := uint32(MinFrequency + 1); f <= MaxFrequency; f++ {
		cur := CalculatePrescale(f)
		if cur > prev {
			t.Fatalf("prescale increased: f=%d prev=%d cur=%d", f, prev, cur)
		}
		prev = cur
	}
}

func TestDutyCycleToTiming(t *testing.T) {
	cases := []struct {
		duty    float32
		wantOn  uint16
		wantOff uint16
	}{
		{0.0, 0, 4095},
		{-0.5, 0, 4095},
		{1.0, 4095, 0},
		{1.5, 4095, 0},
		{0.5, 0, 2047}, // truncation: half scale is 2047, not 2048
		{0.25, 0, 1023},
		{0.075, 0, 307},
		{0.999, 0, 4090},
	}
	for _, c := range cases {
		on, off := DutyCycleToTiming(c.duty)
		if on != c.wantOn || off != c.wantOff {
			t.Errorf("DutyCycleToTiming(%g) = (%d, %d), want (%d, %d)",
				c.duty, on, off, c.wantOn, c.wantOff)
		}
	}
}
