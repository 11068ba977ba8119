package palette

import (
	"fmt"
	"image"
	"math"
	"sort"
)

// Swatch names, in the order their colors are appended to a palette.
const (
	Vibrant      = "vibrant"
	Muted        = "muted"
	DarkVibrant  = "dark-vibrant"
	LightVibrant = "light-vibrant"
	DarkMuted    = "dark-muted"
)

// SwatchOrder is the order swatches are read from each image.
var SwatchOrder = []string{Vibrant, Muted, DarkVibrant, LightVibrant, DarkMuted}

type target struct {
	name                         string
	minLuma, targetLuma, maxLuma float64
	minSat, targetSat, maxSat    float64
}

var targets = []target{
	{Vibrant, 0.3, 0.5, 0.7, 0.35, 1, 1},
	{LightVibrant, 0.55, 0.74, 1, 0.35, 1, 1},
	{DarkVibrant, 0, 0.26, 0.45, 0.35, 1, 1},
	{Muted, 0.3, 0.5, 0.7, 0, 0.3, 0.4},
	{DarkMuted, 0, 0.26, 0.45, 0, 0.3, 0.4},
}

const (
	maxSamples     = 10000
	bucketCount    = 64
	weightSat      = 3.0
	weightLuma     = 6.0
	weightPopulate = 1.0
)

type bucket struct {
	r, g, b    int
	population int
	h, s, l    float64
}

// Swatches classifies the dominant colors of img into the named swatches.
// A swatch is absent when no color falls inside its saturation/lightness window.
func Swatches(img image.Image) map[string]string {
	buckets := quantize(img)
	if len(buckets) == 0 {
		return map[string]string{}
	}

	maxPop := 0
	for _, b := range buckets {
		if b.population > maxPop {
			maxPop = b.population
		}
	}

	used := make(map[int]bool, len(targets))
	out := make(map[string]string, len(targets))
	for _, t := range targets {
		best, bestScore := -1, -1.0
		for i, b := range buckets {
			if used[i] {
				continue
			}
			if b.s < t.minSat || b.s > t.maxSat || b.l < t.minLuma || b.l > t.maxLuma {
				continue
			}
			score := weightSat*(1-math.Abs(b.s-t.targetSat)) +
				weightLuma*(1-math.Abs(b.l-t.targetLuma)) +
				weightPopulate*float64(b.population)/float64(maxPop)
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 {
			used[best] = true
			b := buckets[best]
			out[t.name] = hex(b.r, b.g, b.b)
		}
	}
	return out
}

// quantize samples pixels into a 5-bit-per-channel histogram and returns the
// most populated buckets with their averaged color.
func quantize(img image.Image) []bucket {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return nil
	}
	step := 1
	if total > maxSamples {
		step = int(math.Ceil(math.Sqrt(float64(total) / maxSamples)))
	}

	type acc struct{ r, g, b, n int }
	hist := map[int]*acc{}
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			if a16 < 0x7d00 {
				continue
			}
			r, g, b := int(r16>>8), int(g16>>8), int(b16>>8)
			if r > 250 && g > 250 && b > 250 {
				continue
			}
			key := (r>>3)<<10 | (g>>3)<<5 | b>>3
			a := hist[key]
			if a == nil {
				a = &acc{}
				hist[key] = a
			}
			a.r += r
			a.g += g
			a.b += b
			a.n++
		}
	}

	out := make([]bucket, 0, len(hist))
	for _, a := range hist {
		r, g, b := a.r/a.n, a.g/a.n, a.b/a.n
		h, s, l := hsl(r, g, b)
		out = append(out, bucket{r: r, g: g, b: b, population: a.n, h: h, s: s, l: l})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].population != out[j].population {
			return out[i].population > out[j].population
		}
		return hex(out[i].r, out[i].g, out[i].b) < hex(out[j].r, out[j].g, out[j].b)
	})
	if len(out) > bucketCount {
		out = out[:bucketCount]
	}
	return out
}

func hsl(ri, gi, bi int) (h, s, l float64) {
	r, g, b := float64(ri)/255, float64(gi)/255, float64(bi)/255
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l = (maxC + minC) / 2
	if maxC == minC {
		return 0, 0, l
	}
	d := maxC - minC
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, l
}

func hex(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
