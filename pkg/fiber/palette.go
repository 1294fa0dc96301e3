package fiber

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fibradoc/fibradoc/pkg/types"
)

//go:embed palette.yaml
var paletteYAML []byte

// Palette maps cable fiber counts and splitter ratios to hex colours.
type Palette struct {
	Default   string            `yaml:"default"`
	Cables    map[int]string    `yaml:"cables"`
	Splitters map[string]string `yaml:"splitters"`
}

var defaultPalette = mustParsePalette(paletteYAML)

// ParsePalette decodes a palette document and validates that every colour
// is a #RRGGBB hex string.
func ParsePalette(data []byte) (*Palette, error) {
	var p Palette
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding palette: %w", err)
	}
	if !validHex(p.Default) {
		return nil, fmt.Errorf("palette default colour %q is not #RRGGBB", p.Default)
	}
	for fibers, c := range p.Cables {
		if !validHex(c) {
			return nil, fmt.Errorf("palette colour for %d-fiber cable %q is not #RRGGBB", fibers, c)
		}
	}
	for ratio, c := range p.Splitters {
		if !validHex(c) {
			return nil, fmt.Errorf("palette colour for splitter %s %q is not #RRGGBB", ratio, c)
		}
	}
	return &p, nil
}

func mustParsePalette(data []byte) *Palette {
	p, err := ParsePalette(data)
	if err != nil {
		panic(err)
	}
	return p
}

// Cable returns the colour for a cable with the given fiber count.
func (p *Palette) Cable(fibers int) string {
	if c, ok := p.Cables[fibers]; ok {
		return c
	}
	return p.Default
}

// Splitter returns the colour for a splitter ratio.
func (p *Palette) Splitter(ratio types.SplitterType) string {
	if c, ok := p.Splitters[string(ratio)]; ok {
		return c
	}
	return p.Default
}

// CableColor returns the built-in colour for a cable fiber count. Unknown
// counts get the neutral default.
func CableColor(fibers int) string {
	return defaultPalette.Cable(fibers)
}

// SplitterColor returns the built-in colour for a splitter ratio.
func SplitterColor(ratio types.SplitterType) string {
	return defaultPalette.Splitter(ratio)
}

func validHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	return strings.Trim(strings.ToLower(s[1:]), "0123456789abcdef") == ""
}
