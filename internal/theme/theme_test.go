package theme

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutPadding(t *testing.T) {
	tests := []struct {
		width int
		want  string
	}{
		{2560, "24rem"},
		{1921, "24rem"},
		{1920, "15rem"},
		{1601, "15rem"},
		{1600, "10rem"},
		{921, "10rem"},
		{920, "6rem"},
		{721, "6rem"},
		{720, "4rem"},
		{451, "4rem"},
		{450, "1.5rem"},
		{320, "1.5rem"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LayoutPadding(tt.width), "width %d", tt.width)
	}
}

func TestStylesheet_MediaQueriesWidestFirst(t *testing.T) {
	css := Default().Stylesheet()

	last := -1
	for _, bp := range LayoutBreakpoints {
		idx := strings.Index(css, "(max-width: "+strconv.Itoa(bp.MaxWidth)+"px)")
		require.GreaterOrEqual(t, idx, 0, "missing breakpoint %d", bp.MaxWidth)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestStylesheet_UsesThemeTokens(t *testing.T) {
	th := Default()
	th.Colors.BrandYellow = "#123456"

	css := th.Stylesheet()

	assert.Contains(t, css, "background: #123456")
	assert.Contains(t, css, "border-radius: 6px 44px 6px 44px")
	assert.Contains(t, css, "text-transform: uppercase")
	assert.NotContains(t, css, "%!")
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: dark-roast
colors:
  background: "#1E1B1A"
text_bold_l:
  font_size: 22
`), 0o600))

	th, err := Load(path, Default())

	require.NoError(t, err)
	assert.Equal(t, "dark-roast", th.Name)
	assert.Equal(t, "#1E1B1A", th.Colors.Background)
	assert.Equal(t, Default().Colors.BrandYellow, th.Colors.BrandYellow)
	assert.Equal(t, 22, th.TextBoldL.FontSize)
	assert.Equal(t, 700, th.TextBoldL.FontWeight)
}

func TestLoad_MissingFile(t *testing.T) {
	base := Default()
	th, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), base)

	assert.Error(t, err)
	assert.Equal(t, base, th)
}
