package internal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCanvas records draw calls with deterministic glyph widths so wrapping
// and pagination can be asserted without a PDF backend.
type fakeCanvas struct {
	charWidth float64
	page      int
	style     FontStyle
	size      float64
	texts     []drawnText
	rules     []float64
}

type drawnText struct {
	page  int
	x, y  float64
	text  string
	style FontStyle
	size  float64
}

func newFakeCanvas(charWidth float64) *fakeCanvas {
	return &fakeCanvas{charWidth: charWidth, page: 1}
}

func (c *fakeCanvas) SetFont(style FontStyle, size float64) {
	c.style = style
	c.size = size
}

func (c *fakeCanvas) Text(x, y float64, text string) {
	c.texts = append(c.texts, drawnText{page: c.page, x: x, y: y, text: text, style: c.style, size: c.size})
}

func (c *fakeCanvas) StringWidth(text string) float64 {
	return float64(len(text)) * c.charWidth
}

func (c *fakeCanvas) Rule(x1, y, x2 float64) {
	c.rules = append(c.rules, y)
}

func (c *fakeCanvas) NewPage() {
	c.page++
}

// joinedWords concatenates all drawn text in order and re-splits it into
// words, so wrapping differences do not affect comparison.
func (c *fakeCanvas) joinedWords() []string {
	parts := make([]string, len(c.texts))
	for i, d := range c.texts {
		parts[i] = d.text
	}
	return strings.Fields(strings.Join(parts, " "))
}

func TestRenderTitleAndSectionStyles(t *testing.T) {
	canvas := newFakeCanvas(5)
	NewLayout(canvas).Render("# Main Title\n\n## First Section\n\n## Second Section")

	require.GreaterOrEqual(t, len(canvas.texts), 3)
	title := canvas.texts[0]
	assert.Equal(t, "Main Title", title.text)
	assert.Equal(t, StyleBold, title.style)
	assert.Equal(t, 18.0, title.size)

	section := canvas.texts[1]
	assert.Equal(t, "First Section", section.text)
	assert.Equal(t, StyleBold, section.style)
	assert.Equal(t, 14.0, section.size)
}

func TestRenderGeneratedLineSmallFont(t *testing.T) {
	canvas := newFakeCanvas(5)
	NewLayout(canvas).Render("# Title\n\nGenerated: 2026-08-31 10:30")

	var generated *drawnText
	for i := range canvas.texts {
		if strings.HasPrefix(canvas.texts[i].text, "Generated:") {
			generated = &canvas.texts[i]
		}
	}
	require.NotNil(t, generated)
	assert.Equal(t, 10.0, generated.size)
	assert.Equal(t, StyleNormal, generated.style)
}

func TestRenderOnlyFirstGeneratedLineIsSmall(t *testing.T) {
	canvas := newFakeCanvas(5)
	NewLayout(canvas).Render("# Title\n\nGenerated: 2026-08-31 10:30\n\nGenerated: mentioned again in the body")

	var sizes []float64
	for _, d := range canvas.texts {
		if strings.HasPrefix(d.text, "Generated:") {
			sizes = append(sizes, d.size)
		}
	}
	require.Len(t, sizes, 2)
	assert.Equal(t, 10.0, sizes[0])
	assert.Equal(t, 12.0, sizes[1])
}

func TestRenderHorizontalRule(t *testing.T) {
	canvas := newFakeCanvas(5)
	NewLayout(canvas).Render("above\n\n---\n\nbelow")

	require.Len(t, canvas.rules, 1)
	// Short dash runs are plain text, not rules.
	canvas2 := newFakeCanvas(5)
	NewLayout(canvas2).Render("--")
	assert.Empty(t, canvas2.rules)
}

func TestRenderWrapsLongLines(t *testing.T) {
	// At 10pt per character the 512pt text width fits 51 characters.
	canvas := newFakeCanvas(10)
	text := strings.TrimSpace(strings.Repeat("word ", 30))
	NewLayout(canvas).Render(text)

	require.Greater(t, len(canvas.texts), 1)
	for _, d := range canvas.texts {
		assert.LessOrEqual(t, float64(len(d.text))*10, maxTextWidth)
	}
	assert.Equal(t, strings.Fields(text), canvas.joinedWords())
}

func TestRenderInlineBold(t *testing.T) {
	canvas := newFakeCanvas(5)
	NewLayout(canvas).Render("- **Key** idea here")

	require.Len(t, canvas.texts, 3)
	assert.Equal(t, "- ", canvas.texts[0].text)
	assert.Equal(t, StyleNormal, canvas.texts[0].style)
	assert.Equal(t, "Key", canvas.texts[1].text)
	assert.Equal(t, StyleBold, canvas.texts[1].style)
	assert.Equal(t, " idea here", canvas.texts[2].text)
	assert.Equal(t, StyleNormal, canvas.texts[2].style)

	// Segments advance x by the width of what came before.
	assert.Equal(t, marginLeft, canvas.texts[0].x)
	assert.Equal(t, marginLeft+2*5.0, canvas.texts[1].x)
	assert.Equal(t, marginLeft+5*5.0, canvas.texts[2].x)
}

func TestRenderHeadingsIgnoreInlineBoldMarkers(t *testing.T) {
	canvas := newFakeCanvas(5)
	NewLayout(canvas).Render("# A **bold** title")

	require.Len(t, canvas.texts, 1)
	assert.Equal(t, "A **bold** title", canvas.texts[0].text)
}

func TestRenderPaginatesLongDocument(t *testing.T) {
	canvas := newFakeCanvas(5)

	var doc strings.Builder
	doc.WriteString("# Long Document\n")
	for range 80 {
		doc.WriteString("\nA paragraph line of body text.\n")
	}
	NewLayout(canvas).Render(doc.String())

	assert.Greater(t, canvas.page, 1)

	// Everything that was drawn stays inside the vertical margins, and
	// reading pages in order reconstructs the document.
	lastPage := 1
	for _, d := range canvas.texts {
		assert.GreaterOrEqual(t, d.page, lastPage)
		lastPage = d.page
		assert.LessOrEqual(t, d.y, pageHeight-topMargin)
	}
	assert.Equal(t, 80, strings.Count(strings.Join(canvas.joinedWords(), " "), "A paragraph line of body text."))
}

func TestIsRuleLine(t *testing.T) {
	assert.True(t, isRuleLine("---"))
	assert.True(t, isRuleLine("-----"))
	assert.True(t, isRuleLine("———"))
	assert.False(t, isRuleLine("--"))
	assert.False(t, isRuleLine("- - -"))
	assert.False(t, isRuleLine("--- note"))
}
