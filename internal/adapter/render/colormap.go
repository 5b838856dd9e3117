package render

import (
	"errors"
	"fmt"
	"image/color"
	"slices"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/palette/moreland"
)

// paletteSize is the number of ColorBrewer control colors requested.
const paletteSize = 9

// NewColorMap builds a continuous color map from a ColorBrewer palette,
// interpolated in perceptual color space. reverse flips the palette, so
// ("Blues", true) runs from dark blue at min to white at max.
func NewColorMap(name string, reverse bool, minV, maxV, alpha float64) (palette.ColorMap, error) {
	if maxV <= minV {
		return nil, fmt.Errorf("color map range [%g, %g] is empty", minV, maxV)
	}
	p, err := brewer.GetPalette(brewer.TypeAny, name, paletteSize)
	if err != nil {
		return nil, fmt.Errorf("color palette %q: %w", name, err)
	}
	controls := slices.Clone(p.Colors())
	if reverse {
		slices.Reverse(controls)
	}

	cmap, err := luminanceMap(controls)
	if err != nil {
		return nil, fmt.Errorf("color palette %q: %w", name, err)
	}
	cmap.SetMin(minV)
	cmap.SetMax(maxV)
	cmap.SetAlpha(alpha)
	return cmap, nil
}

// luminanceMap interpolates controls with moreland.NewLuminance, which needs
// controls ordered by increasing lightness. Darkening palettes are built
// reversed and read back to front.
func luminanceMap(controls []color.Color) (palette.ColorMap, error) {
	cmap, err := moreland.NewLuminance(controls)
	if err == nil {
		return cmap, nil
	}
	reversed := slices.Clone(controls)
	slices.Reverse(reversed)
	inner, err2 := moreland.NewLuminance(reversed)
	if err2 != nil {
		return nil, errors.Join(err, err2)
	}
	return &invertedMap{ColorMap: inner}, nil
}

// invertedMap reads its wrapped map from max to min.
type invertedMap struct {
	palette.ColorMap
}

func (m *invertedMap) At(v float64) (color.Color, error) {
	return m.ColorMap.At(m.Max() + m.Min() - v)
}

func (m *invertedMap) Palette(colors int) palette.Palette {
	cols := slices.Clone(m.ColorMap.Palette(colors).Colors())
	slices.Reverse(cols)
	return fixedPalette(cols)
}

type fixedPalette []color.Color

func (p fixedPalette) Colors() []color.Color { return p }
