// Package color derives placeholder colours for books without a cover.
package color

import "fmt"

// ForTitle returns a stable hex colour for a book title, so a book without a
// cover always gets the same placeholder tile.
func ForTitle(title string) string {
	h := 0
	for _, c := range title {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	hue := float64(h % 360)

	// Muted and light enough for dark text on top.
	r, g, b := hslToRGB(hue, 0.35, 0.7)

	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h in [0,360), s and l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return uint8(hueToRGB(p, q, h+1.0/3.0) * 255),
		uint8(hueToRGB(p, q, h) * 255),
		uint8(hueToRGB(p, q, h-1.0/3.0) * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
