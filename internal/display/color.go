package display

import (
	"os"
	"strconv"
	"sync"

	"github.com/muesli/termenv"
)

// ASCII brightness ramp from darkest to brightest.
const asciiRamp = " .:-=+*#%@"

// colorMode describes how colors are rendered.
type colorMode uint8

const (
	colorOff     colorMode = iota // NO_COLOR or dumb terminal
	colorANSI16                   // basic 16-color
	colorANSI256                  // 256-color
	colorTrue                     // 24-bit truecolor
)

var (
	detectOnce sync.Once
	termColor  colorMode
)

// detectColorMode reads the terminal's color support from the environment
// once. It does not query the terminal, which bubbletea owns.
func detectColorMode() colorMode {
	detectOnce.Do(func() {
		termColor = modeFromProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
	})
	return termColor
}

func modeFromProfile(p termenv.Profile) colorMode {
	switch p {
	case termenv.TrueColor:
		return colorTrue
	case termenv.ANSI256:
		return colorANSI256
	case termenv.ANSI:
		return colorANSI16
	default:
		return colorOff
	}
}

// brightnessChar maps a 0-255 luminance to an ASCII character.
func brightnessChar(lum uint8) byte {
	idx := int(lum) * (len(asciiRamp) - 1) / 255
	return asciiRamp[idx]
}

// luminance computes perceived brightness (ITU-R BT.601).
func luminance(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b)) / 1000)
}

// appendColorSeq appends the escape selecting rgb as foreground, or as
// background when bg is set. Nothing is appended with colors off.
func appendColorSeq(dst []byte, mode colorMode, bg bool, r, g, b uint8) []byte {
	switch mode {
	case colorTrue:
		if bg {
			dst = append(dst, "\x1b[48;2;"...)
		} else {
			dst = append(dst, "\x1b[38;2;"...)
		}
		dst = strconv.AppendUint(dst, uint64(r), 10)
		dst = append(dst, ';')
		dst = strconv.AppendUint(dst, uint64(g), 10)
		dst = append(dst, ';')
		dst = strconv.AppendUint(dst, uint64(b), 10)
		return append(dst, 'm')
	case colorANSI256:
		if bg {
			dst = append(dst, "\x1b[48;5;"...)
		} else {
			dst = append(dst, "\x1b[38;5;"...)
		}
		dst = strconv.AppendInt(dst, int64(ansi256Index(r, g, b)), 10)
		return append(dst, 'm')
	case colorANSI16:
		idx := ansi16Index(r, g, b)
		base := 30
		if bg {
			base = 40
		}
		if idx >= 8 {
			base += 60
			idx -= 8
		}
		dst = append(dst, "\x1b["...)
		dst = strconv.AppendInt(dst, int64(base+idx), 10)
		return append(dst, 'm')
	default:
		return dst
	}
}

// ansi256Index maps rgb into the 6x6x6 color cube.
func ansi256Index(r, g, b uint8) int {
	ri := int(r) * 5 / 255
	gi := int(g) * 5 / 255
	bi := int(b) * 5 / 255
	return 16 + 36*ri + 6*gi + bi
}

// ansi16Index returns the nearest of the 16 base colors.
func ansi16Index(r, g, b uint8) int {
	best := 0
	bestDist := 1<<31 - 1
	for i, c := range ansi16Palette {
		dr := int(r) - int(c[0])
		dg := int(g) - int(c[1])
		db := int(b) - int(c[2])
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

var ansi16Palette = [16][3]uint8{
	{0, 0, 0},       // black
	{205, 49, 49},   // red
	{13, 188, 121},  // green
	{229, 229, 16},  // yellow
	{36, 114, 200},  // blue
	{188, 63, 188},  // magenta
	{17, 168, 205},  // cyan
	{229, 229, 229}, // white
	{102, 102, 102}, // bright black
	{241, 76, 76},   // bright red
	{35, 209, 139},  // bright green
	{245, 245, 67},  // bright yellow
	{59, 142, 234},  // bright blue
	{214, 112, 214}, // bright magenta
	{41, 184, 219},  // bright cyan
	{255, 255, 255}, // bright white
}

const ansiReset = "\x1b[0m"
