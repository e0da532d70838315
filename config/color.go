package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor reads a "#rgb", "#rrggbb" or CSS color name into sRGB components in [0, 1].
//
// Parameters:
//   - s: the color text, case insensitive
//
// Returns:
//   - [3]float32: the sRGB color
//   - error: an error if the text is neither hex nor a known name
func ParseColor(s string) ([3]float32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return [3]float32{}, fmt.Errorf("color %q: want #rgb or #rrggbb", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return [3]float32{}, fmt.Errorf("color %q: %w", s, err)
		}
		return [3]float32{
			float32(v>>16&0xff) / 255,
			float32(v>>8&0xff) / 255,
			float32(v&0xff) / 255,
		}, nil
	}

	c, ok := colornames.Map[s]
	if !ok {
		return [3]float32{}, fmt.Errorf("color %q: unknown name", s)
	}
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}, nil
}

// SRGBToLinear applies the sRGB transfer function inverse to each component.
func SRGBToLinear(c [3]float32) [3]float32 {
	var out [3]float32
	for i, v := range c {
		if v <= 0.04045 {
			out[i] = v / 12.92
		} else {
			out[i] = float32(math.Pow((float64(v)+0.055)/1.055, 2.4))
		}
	}
	return out
}
