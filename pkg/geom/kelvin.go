package geom

import "github.com/chewxy/math32"

// KelvinToRGB converts a color temperature in Kelvin to linear RGB in [0,1],
// using Tanner Helland's piecewise approximation.
func KelvinToRGB(kelvin float32) (r, g, b float32) {
	temp := kelvin / 100.0

	if temp <= 66 {
		r = 1.0
	} else {
		r = 329.698727446 * math32.Pow(temp-60, -0.1332047592)
		r = clamp01(r / 255.0)
	}

	if temp <= 66 {
		g = 99.4708025861*math32.Log(temp) - 161.1195681661
		g = clamp01(g / 255.0)
	} else {
		g = 288.1221695283 * math32.Pow(temp-60, -0.0755148492)
		g = clamp01(g / 255.0)
	}

	switch {
	case temp >= 66:
		b = 1.0
	case temp <= 19:
		b = 0.0
	default:
		b = 138.5177312231*math32.Log(temp-10) - 305.0447927307
		b = clamp01(b / 255.0)
	}

	return r, g, b
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
