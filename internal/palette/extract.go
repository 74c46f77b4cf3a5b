package palette

import (
	"errors"
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/olivier-w/pulsar/internal/visualizer"
)

var (
	// ErrNoArtwork means there was nothing to extract from.
	ErrNoArtwork = errors.New("no artwork")
	// ErrShortPalette means the image yielded fewer colors than requested.
	ErrShortPalette = errors.New("palette has too few colors")
)

const (
	maxSamples  = 4096
	maxIter     = 24
	minAlpha    = 125 // skip mostly transparent pixels
	whiteCutoff = 250 // skip near-white pixels
)

type lab struct{ l, a, b float64 }

func (p lab) dist2(q lab) float64 {
	dl, da, db := p.l-q.l, p.a-q.a, p.b-q.b
	return dl*dl + da*da + db*db
}

// Extract returns up to count dominant colors of img, most populous first.
// Pixels are clustered with k-means in CIE L*a*b* space. When the image has
// fewer distinct clusters than count, the colors found are returned together
// with ErrShortPalette.
func Extract(img image.Image, count int) ([]visualizer.RGB, error) {
	if img == nil {
		return nil, ErrNoArtwork
	}
	if count < 1 {
		count = 1
	}
	samples := samplePixels(img)
	if len(samples) == 0 {
		return nil, ErrShortPalette
	}

	centroids := seedCentroids(samples, count)
	assign := make([]int, len(samples))
	sizes := make([]int, len(centroids))
	for range maxIter {
		changed := false
		for i, s := range samples {
			best, bestDist := 0, s.dist2(centroids[0])
			for k := 1; k < len(centroids); k++ {
				if d := s.dist2(centroids[k]); d < bestDist {
					best, bestDist = k, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}

		sums := make([]lab, len(centroids))
		clear(sizes)
		for i, s := range samples {
			k := assign[i]
			sums[k].l += s.l
			sums[k].a += s.a
			sums[k].b += s.b
			sizes[k]++
		}
		for k := range centroids {
			if sizes[k] == 0 {
				continue
			}
			n := float64(sizes[k])
			centroids[k] = lab{sums[k].l / n, sums[k].a / n, sums[k].b / n}
		}
		if !changed {
			break
		}
	}

	order := make([]int, 0, len(centroids))
	for k := range centroids {
		if sizes[k] > 0 {
			order = append(order, k)
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return sizes[order[i]] > sizes[order[j]] })

	out := make([]visualizer.RGB, 0, len(order))
	for _, k := range order {
		c := centroids[k]
		r, g, b := colorful.Lab(c.l, c.a, c.b).Clamped().RGB255()
		out = append(out, visualizer.RGB{R: r, G: g, B: b})
	}
	if len(out) < count {
		return out, ErrShortPalette
	}
	return out, nil
}

// samplePixels reads at most maxSamples opaque, non-white pixels on a grid.
func samplePixels(img image.Image) []lab {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return nil
	}
	stride := 1
	for total/(stride*stride) > maxSamples {
		stride++
	}
	out := make([]lab, 0, min(total, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += stride {
		for x := b.Min.X; x < b.Max.X; x += stride {
			px := img.At(x, y)
			_, _, _, a := px.RGBA()
			if a>>8 < minAlpha {
				continue
			}
			c, ok := colorful.MakeColor(px)
			if !ok {
				continue
			}
			r, g, bl := c.RGB255()
			if r > whiteCutoff && g > whiteCutoff && bl > whiteCutoff {
				continue
			}
			l, aa, bb := c.Lab()
			out = append(out, lab{l, aa, bb})
		}
	}
	return out
}

// seedCentroids picks the first sample, then repeatedly the sample farthest
// from every chosen centroid. Deterministic, so the same artwork always
// yields the same palette.
func seedCentroids(samples []lab, k int) []lab {
	centroids := []lab{samples[0]}
	nearest := make([]float64, len(samples))
	for i, s := range samples {
		nearest[i] = s.dist2(samples[0])
	}
	for len(centroids) < k {
		far, farDist := -1, 0.0
		for i, d := range nearest {
			if d > farDist {
				far, farDist = i, d
			}
		}
		if far < 0 {
			break
		}
		c := samples[far]
		centroids = append(centroids, c)
		for i, s := range samples {
			if d := s.dist2(c); d < nearest[i] {
				nearest[i] = d
			}
		}
	}
	return centroids
}
