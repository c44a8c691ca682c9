package buildings

import (
	"strconv"
	"strings"

	"github.com/geoquad/tilebuilder/internal/model"
	"github.com/geoquad/tilebuilder/internal/stringtable"
	"github.com/geoquad/tilebuilder/internal/style"
)

// Gradient interpolates a color across a [0,1] ratio, parsed from a style
// string of stops "ratio:#rrggbb;ratio:#rrggbb;...". A style value with
// no ';' is a bare "#rrggbb"/"#rrggbbaa" constant, i.e. a single-stop
// gradient that ignores its input ratio — this is the common case for
// most building stylesheets, which declare a flat roof-color/facade-color
// rather than an actual gradient.
type Gradient struct {
	stops []gradientStop
}

type gradientStop struct {
	at    float64
	color uint32
}

// ParseGradient parses spec into a Gradient. An unparseable or empty spec
// yields a Gradient with no stops, whose Evaluate always returns fallback.
func ParseGradient(spec string) Gradient {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Gradient{}
	}
	// validHex reports whether s is a color parseHex accepts.
	validHex := func(s string) bool {
		s = strings.TrimPrefix(s, "#")
		_, err := strconv.ParseUint(s, 16, 32)
		return (len(s) == 6 || len(s) == 8) && err == nil
	}
	if !strings.Contains(spec, ";") && !strings.Contains(spec, ":") {
		if !validHex(spec) {
			return Gradient{}
		}
		return Gradient{stops: []gradientStop{{at: 0, color: parseHex(spec, 0)}}}
	}

	var stops []gradientStop
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		at, err := strconv.ParseFloat(strings.TrimSpace(kv[0]), 64)
		if err != nil {
			continue
		}
		color := strings.TrimSpace(kv[1])
		if !validHex(color) {
			continue
		}
		stops = append(stops, gradientStop{at: at, color: parseHex(color, 0)})
	}
	return Gradient{stops: stops}
}

// Evaluate returns the interpolated color at ratio t (clamped to [0,1]),
// or fallback if the gradient has no stops.
func (g Gradient) Evaluate(t float64, fallback uint32) uint32 {
	if len(g.stops) == 0 {
		return fallback
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	if len(g.stops) == 1 {
		return g.stops[0].color
	}

	lo, hi := g.stops[0], g.stops[len(g.stops)-1]
	for i := 0; i+1 < len(g.stops); i++ {
		if t >= g.stops[i].at && t <= g.stops[i+1].at {
			lo, hi = g.stops[i], g.stops[i+1]
			break
		}
	}
	span := hi.at - lo.at
	if span <= 0 {
		return lo.color
	}
	frac := (t - lo.at) / span
	return lerpColor(lo.color, hi.color, frac)
}

func lerpColor(a, b uint32, f float64) uint32 {
	ar, ag, ab, aa := channels(a)
	br, bg, bb, ba := channels(b)
	r := lerp(ar, br, f)
	g := lerp(ag, bg, f)
	bl := lerp(ab, bb, f)
	al := lerp(aa, ba, f)
	return r<<24 | g<<16 | bl<<8 | al
}

func channels(c uint32) (r, g, b, a uint32) {
	return c >> 24 & 0xff, c >> 16 & 0xff, c >> 8 & 0xff, c & 0xff
}

func lerp(a, b uint32, f float64) uint32 {
	return uint32(float64(a) + (float64(b)-float64(a))*f)
}

func parseHex(s string, fallback uint32) uint32 {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 6:
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return fallback
		}
		return uint32(v)<<8 | 0xff
	case 8:
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return fallback
		}
		return uint32(v)
	default:
		return fallback
	}
}

// evaluateTagColor resolves a style color property against the element's
// own tags (spec §4.5 step 6/7, "color evaluated against the element's
// tags"): a gradient's ratio is the element's `colour-ratio` tag if
// present (0 otherwise), letting a stylesheet vary roof/facade color by a
// tag-driven value instead of a single flat color.
func evaluateTagColor(sty style.Style, key string, tags model.Tags, table *stringtable.Table, fallback uint32) uint32 {
	spec, _ := sty.GetString(key)
	grad := ParseGradient(spec)

	ratio := 0.0
	if raw, ok := tags.Get(table, "colour-ratio"); ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			ratio = v
		}
	}
	return grad.Evaluate(ratio, fallback)
}
