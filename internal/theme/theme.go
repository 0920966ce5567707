// Package theme holds the storefront design tokens and the layout rules
// keyed on viewport width. A Theme is built once at startup and handed to
// the renderer; nothing here is global.
package theme

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Colors are the palette tokens.
type Colors struct {
	Background      string `yaml:"background"`
	BaseCard        string `yaml:"base_card"`
	BaseInput       string `yaml:"base_input"`
	BaseButton      string `yaml:"base_button"`
	BaseText        string `yaml:"base_text"`
	BaseSubtitle    string `yaml:"base_subtitle"`
	BaseTitle       string `yaml:"base_title"`
	BrandYellow     string `yaml:"brand_yellow"`
	BrandYellowDark string `yaml:"brand_yellow_dark"`
	BrandPurple     string `yaml:"brand_purple"`
	BrandPurpleDark string `yaml:"brand_purple_dark"`
}

// Typography is one text style. LineHeight is in pixels.
type Typography struct {
	FontFamily    string `yaml:"font_family"`
	FontSize      int    `yaml:"font_size"`
	FontWeight    int    `yaml:"font_weight"`
	LineHeight    int    `yaml:"line_height"`
	TextTransform string `yaml:"text_transform"`
}

// CSS renders the style as declarations.
func (t Typography) CSS() string {
	out := fmt.Sprintf("font-family: %s; font-size: %dpx; font-weight: %d; line-height: %dpx;",
		t.FontFamily, t.FontSize, t.FontWeight, t.LineHeight)
	if t.TextTransform != "" {
		out += " text-transform: " + t.TextTransform + ";"
	}
	return out
}

// Theme is the full set of tokens used by the templates and stylesheet.
type Theme struct {
	Name   string `yaml:"name"`
	Colors Colors `yaml:"colors"`

	TitleL       Typography `yaml:"title_l"`
	TextRegularM Typography `yaml:"text_regular_m"`
	TextRegularS Typography `yaml:"text_regular_s"`
	TextBoldL    Typography `yaml:"text_bold_l"`
	ButtonG      Typography `yaml:"button_g"`
}

const (
	bodyFont  = `"Roboto", sans-serif`
	titleFont = `"Baloo 2", sans-serif`
)

// Default returns the Coffee Delivery theme.
func Default() Theme {
	return Theme{
		Name: "coffee-delivery",
		Colors: Colors{
			Background:      "#FAFAFA",
			BaseCard:        "#F3F2F2",
			BaseInput:       "#EDEDED",
			BaseButton:      "#E6E5E5",
			BaseText:        "#574F4D",
			BaseSubtitle:    "#403937",
			BaseTitle:       "#272221",
			BrandYellow:     "#DBAC2C",
			BrandYellowDark: "#C47F17",
			BrandPurple:     "#8047F8",
			BrandPurpleDark: "#4B2995",
		},
		TitleL:       Typography{FontFamily: titleFont, FontSize: 32, FontWeight: 800, LineHeight: 42},
		TextRegularM: Typography{FontFamily: bodyFont, FontSize: 16, FontWeight: 400, LineHeight: 21},
		TextRegularS: Typography{FontFamily: bodyFont, FontSize: 14, FontWeight: 400, LineHeight: 18},
		TextBoldL:    Typography{FontFamily: bodyFont, FontSize: 20, FontWeight: 700, LineHeight: 26},
		ButtonG:      Typography{FontFamily: bodyFont, FontSize: 14, FontWeight: 700, LineHeight: 22, TextTransform: "uppercase"},
	}
}

// Load reads a YAML file and applies it on top of base. Keys absent from the
// file keep their base values.
func Load(path string, base Theme) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read theme file: %w", err)
	}
	t := base
	if err := yaml.Unmarshal(data, &t); err != nil {
		return base, fmt.Errorf("failed to parse theme file %s: %w", path, err)
	}
	return t, nil
}
