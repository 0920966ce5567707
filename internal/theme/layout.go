package theme

import (
	"fmt"
	"strings"
)

// Breakpoint applies Padding to viewports up to MaxWidth pixels wide.
type Breakpoint struct {
	MaxWidth int
	Padding  string
}

// LayoutBasePadding is the horizontal page padding above every breakpoint.
const LayoutBasePadding = "24rem"

// LayoutBreakpoints are ordered widest first, the order the media queries
// are emitted in, so narrower rules win.
var LayoutBreakpoints = []Breakpoint{
	{MaxWidth: 1920, Padding: "15rem"},
	{MaxWidth: 1600, Padding: "10rem"},
	{MaxWidth: 920, Padding: "6rem"},
	{MaxWidth: 720, Padding: "4rem"},
	{MaxWidth: 450, Padding: "1.5rem"},
}

// LayoutPadding returns the horizontal page padding for a viewport width.
func LayoutPadding(width int) string {
	padding := LayoutBasePadding
	for _, bp := range LayoutBreakpoints {
		if width <= bp.MaxWidth {
			padding = bp.Padding
		}
	}
	return padding
}

// Stylesheet renders the layout and checkout styles for t.
func (t Theme) Stylesheet() string {
	var b strings.Builder
	c := t.Colors

	fmt.Fprintf(&b, "body { margin: 0; background: %s; color: %s; %s }\n", c.Background, c.BaseText, t.TextRegularM.CSS())
	fmt.Fprintf(&b, "h1, h2, h3 { color: %s; }\n", c.BaseSubtitle)

	b.WriteString("\n.layout-container { width: 100%; box-sizing: border-box; padding: 0 " + LayoutBasePadding + "; }\n")
	for _, bp := range LayoutBreakpoints {
		fmt.Fprintf(&b, "@media screen and (max-width: %dpx) {\n  .layout-container { padding: 0 %s; }\n}\n", bp.MaxWidth, bp.Padding)
	}

	fmt.Fprintf(&b, `
.user-address { background: %[1]s; border-radius: 6px; padding: 2.5rem; }
.user-address .title svg { color: %[2]s; }
.address-inputs { display: flex; flex-direction: column; gap: 1rem; }
.input-container { display: flex; gap: .75rem; flex-wrap: wrap; }
.input-container input { flex: 1; background: %[3]s; border: 1px solid %[4]s; border-radius: 4px; padding: .75rem; %[5]s }
.input-container input:focus { outline: 1px solid %[2]s; }
`, c.BaseCard, c.BrandYellowDark, c.BaseInput, c.BaseButton, t.TextRegularS.CSS())

	fmt.Fprintf(&b, `
.confirm-products { background: %[1]s; border-radius: 6px 44px 6px 44px; padding: 2.5rem; display: flex; flex-direction: column; justify-content: flex-start; align-items: flex-start; gap: 1.5rem; }
.products-overflow { width: 100%%; max-height: 320px; overflow-y: auto; padding-right: 1rem; border-bottom: 1px solid rgba(0,0,0,0.2); }
.products-overflow::-webkit-scrollbar { width: 8px; }
.products-overflow::-webkit-scrollbar-track { opacity: 0; visibility: hidden; }
@media screen and (min-width: 400px) {
  .products-overflow { height: auto; }
}
.prices-summary-container { width: 100%%; }
.prices-summary { width: 100%%; display: flex; align-items: center; justify-content: space-between; flex-wrap: wrap; gap: 1rem; margin-top: .75rem; }
.prices-summary p { %[2]s color: %[3]s; margin: 0; }
.total-price p { %[4]s color: %[5]s; }
.confirm-order { %[6]s background: %[7]s; color: #FFF; width: 100%%; border: 0; border-radius: 6px; padding: .5rem .75rem; cursor: pointer; }
.confirm-order:hover { background: %[8]s; }
`, c.BaseCard, t.TextRegularS.CSS(), c.BaseText, t.TextBoldL.CSS(), c.BaseSubtitle, t.ButtonG.CSS(), c.BrandYellow, c.BrandYellowDark)

	fmt.Fprintf(&b, `
.order-confirmation h1 { %[1]s color: %[2]s; }
.order-details { border: 1px solid %[3]s; border-radius: 6px 36px 6px 36px; padding: 2.5rem; display: flex; flex-direction: column; gap: 2rem; }
`, t.TitleL.CSS(), c.BrandYellowDark, c.BrandYellow)

	return b.String()
}
