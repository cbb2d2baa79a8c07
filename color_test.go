package main

import "testing"

func TestNewColorRange(t *testing.T) {
	c, err := NewColorRange(128, 0, 255, 0, 255)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Green != 0 || c.Blue < 0.99 {
		t.Errorf("NewColorRange(128,0,255,0,255) = %+v", c)
	}
	if _, err := NewColorRange(300, 0, 0, 0, 255); err == nil {
		t.Error("expected an error for an out-of-range channel")
	}
}

func TestParseColorHex(t *testing.T) {
	tests := []struct {
		in          string
		r, g, b     float64
		expectError bool
	}{
		{"ff0000", 255.0 / 256, 0, 0, false},
		{"00ff00", 0, 255.0 / 256, 0, false},
		{"f00", 0.9375, 0, 0, false},
		{"zzz", 0, 0, 0, true},
		{"ffff", 0, 0, 0, true},
	}
	for _, tc := range tests {
		c, err := ParseColorHex(tc.in)
		if tc.expectError {
			if err == nil {
				t.Errorf("ParseColorHex(%q): expected error, got none", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseColorHex(%q): unexpected error: %v", tc.in, err)
		}
		if c.Red != tc.r || c.Green != tc.g || c.Blue != tc.b {
			t.Errorf("ParseColorHex(%q) = %+v, want {%v %v %v}", tc.in, c, tc.r, tc.g, tc.b)
		}
	}
}

func TestColorConvert(t *testing.T) {
	c := Color{Red: 1, Green: 0.5, Blue: 0}
	r, g, b := c.Convert(256)
	if r != 256 || g != 128 || b != 0 {
		t.Errorf("Convert(256) = (%d, %d, %d), want (256, 128, 0)", r, g, b)
	}
}

func TestColorConvertGray(t *testing.T) {
	gray := Color{Red: 0.5, Green: 0.5, Blue: 0.5}
	if gray.ConvertGray(256) != 128 {
		t.Errorf("ConvertGray(256) on a gray color = %d, want 128", gray.ConvertGray(256))
	}
	colored := Color{Red: 1, Green: 0, Blue: 0}
	if colored.ConvertGray(256) != -1 {
		t.Errorf("ConvertGray(256) on red = %d, want -1", colored.ConvertGray(256))
	}
}

func TestUseWhiteText(t *testing.T) {
	if (Color{Red: 1, Green: 1, Blue: 1}).UseWhiteText() {
		t.Error("white background should prefer black text")
	}
	if !(Color{}.UseWhiteText()) {
		t.Error("black background should prefer white text")
	}
}
