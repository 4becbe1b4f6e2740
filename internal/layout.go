package internal

import (
	"math"
	"strings"
)

// FontStyle selects between the two faces the brief layout uses
type FontStyle int

const (
	StyleNormal FontStyle = iota
	StyleBold
)

// Canvas is the drawing surface the brief layout renders onto. Coordinates
// are points with the origin at the bottom-left corner of the page, y
// growing upward. StringWidth measures in the currently set font.
type Canvas interface {
	SetFont(style FontStyle, size float64)
	Text(x, y float64, text string)
	StringWidth(text string) float64
	Rule(x1, y, x2 float64)
	NewPage()
}

// US Letter geometry in points, with fixed margins.
const (
	pageWidth    = 612.0
	pageHeight   = 792.0
	marginLeft   = 50.0
	marginRight  = 50.0
	topMargin    = 60.0
	bottomMargin = 60.0

	// baseUnit is the spacing unit between blocks
	baseUnit = 14.0

	maxTextWidth = pageWidth - marginLeft - marginRight
)

// Layout paginates a Markdown-ish brief onto a Canvas. The first heading
// renders as the main title, later headings as section headings; dashes-only
// lines become horizontal rules, "- " lines bullets, everything else body
// text. Inline **bold** spans are honored in body and bullet lines.
type Layout struct {
	canvas Canvas
	y      float64
}

// NewLayout creates a layout with the cursor at the top of the first page
func NewLayout(canvas Canvas) *Layout {
	return &Layout{canvas: canvas, y: pageHeight - topMargin}
}

// Render draws the whole brief, breaking pages as the cursor reaches the
// bottom margin.
func (l *Layout) Render(brief string) {
	firstHeaderDone := false
	generatedDone := false

	for _, rawLine := range strings.Split(brief, "\n") {
		stripped := strings.TrimSpace(rawLine)

		if stripped == "" {
			l.advance(baseUnit * 0.75)
			continue
		}

		if isRuleLine(stripped) {
			l.advance(baseUnit * 0.5)
			l.canvas.Rule(marginLeft, l.y, pageWidth-marginRight)
			l.advance(baseUnit)
			continue
		}

		if strings.HasPrefix(stripped, "#") {
			heading := strings.TrimSpace(strings.TrimLeft(stripped, "#"))
			if !firstHeaderDone {
				l.drawWrapped(heading, StyleBold, 18, baseUnit, false)
				firstHeaderDone = true
			} else {
				l.advance(baseUnit * 1.25)
				l.drawWrapped(heading, StyleBold, 14, baseUnit*0.75, false)
			}
			continue
		}

		// Only the first Generated: line is the provenance timestamp; any
		// later one is ordinary body text.
		if strings.HasPrefix(stripped, "Generated:") && !generatedDone {
			generatedDone = true
			l.drawWrapped(rawLine, StyleNormal, 10, baseUnit, false)
			continue
		}

		if strings.HasPrefix(stripped, "- ") {
			l.drawWrapped(rawLine, StyleNormal, 12, baseUnit*0.3, true)
			continue
		}

		l.drawWrapped(rawLine, StyleNormal, 12, baseUnit*0.5, true)
	}
}

// advance moves the cursor down and breaks the page when it passes the
// bottom margin.
func (l *Layout) advance(dy float64) {
	l.y -= dy
	if l.y < bottomMargin {
		l.canvas.NewPage()
		l.y = pageHeight - topMargin
	}
}

// drawWrapped draws one block of text with greedy word-wrapping. Widths are
// measured in the block's base font even when inline bold is rendered, which
// is close enough for wrapping.
func (l *Layout) drawWrapped(text string, style FontStyle, size float64, extraAfter float64, inlineBold bool) {
	l.canvas.SetFont(style, size)
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}

	lineHeight := math.Floor(size * 1.4)
	line := ""

	flush := func() {
		if inlineBold {
			l.drawLineWithBold(line, style, size)
		} else {
			l.canvas.Text(marginLeft, l.y, line)
		}
		l.y -= lineHeight
		if l.y < bottomMargin {
			l.canvas.NewPage()
			l.y = pageHeight - topMargin
			l.canvas.SetFont(style, size)
		}
	}

	for _, word := range words {
		candidate := strings.TrimSpace(line + " " + word)
		if l.canvas.StringWidth(candidate) <= maxTextWidth {
			line = candidate
			continue
		}
		flush()
		line = word
	}
	if line != "" {
		flush()
	}

	// Trailing block space never forces a page break on its own; the next
	// block's first line does that if needed.
	l.y -= extraAfter
}

// drawLineWithBold draws a single line, rendering **...** spans in bold.
// Split on the marker yields parts that alternate normal and bold; empty
// parts (from "****") toggle without drawing. The base font is restored
// afterwards so wrapping keeps measuring in it.
func (l *Layout) drawLineWithBold(lineText string, style FontStyle, size float64) {
	if !strings.Contains(lineText, "**") {
		l.canvas.SetFont(style, size)
		l.canvas.Text(marginLeft, l.y, lineText)
		return
	}

	x := marginLeft
	bold := false
	for _, part := range strings.Split(lineText, "**") {
		if part == "" {
			bold = !bold
			continue
		}
		if bold {
			l.canvas.SetFont(StyleBold, size)
		} else {
			l.canvas.SetFont(style, size)
		}
		l.canvas.Text(x, l.y, part)
		x += l.canvas.StringWidth(part)
		bold = !bold
	}

	l.canvas.SetFont(style, size)
}

// isRuleLine reports whether a line is only dashes (at least three), which
// renders as a horizontal rule.
func isRuleLine(s string) bool {
	runes := []rune(s)
	if len(runes) < 3 {
		return false
	}
	for _, r := range runes {
		if r != '-' && r != '–' && r != '—' {
			return false
		}
	}
	return true
}
