package ui

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Section is one block of the docs page
type Section struct {
	Title string
	Lines []string
}

// DocSections is the content of the docs page.
var DocSections = []Section{
	{
		Title: "AI Search Engine Documentation",
		Lines: []string{
			"Welcome to the documentation for the AI Search Engine. This project showcases",
			"context-aware search results behind an animated front end.",
		},
	},
	{
		Title: "Features",
		Lines: []string{
			"- Real-time AI-powered search",
			"- Trending searches refreshed every five minutes",
			"- Animated 3D particle globe",
			"- Configurable search service URL",
		},
	},
	{
		Title: "Installation",
		Lines: []string{
			"  go install github.com/olivierh59500/neuralsearch@latest",
			"  neuralsearch run --api-url http://localhost:8000",
		},
	},
	{
		Title: "Usage",
		Lines: []string{
			"Press F3 to open the search page, type a query and press Enter.",
			"Up/Down pick a trending search; Enter on an empty query searches it.",
			"On the landing page: F6 connection limit, F7 spatial index,",
			"F8/F9 save/load preset, PgUp/PgDn connection distance.",
		},
	},
	{
		Title: "API Reference",
		Lines: []string{
			"POST /search   Submit a query to retrieve search results.",
			`  Request:  {"query": "example"}`,
			`  Response: {"results": [{"title", "link", "snippet", "relevance_score"}]}`,
			"GET /trending  Returns the trending queries.",
			`  Response: {"trending": ["example", "..."]}`,
		},
	},
}

// Docs layout
const (
	docsMargin     = 48
	docsLineHeight = 18
	docsScrollStep = docsLineHeight
)

// docsPage renders DocSections with keyboard scrolling
type docsPage struct {
	width, height int
	offset        int
	lines         []docLine
}

type docLine struct {
	text    string
	heading bool
	hue     float64
}

func newDocsPage(width, height int) *docsPage {
	p := &docsPage{width: width, height: height}
	for i, s := range DocSections {
		p.lines = append(p.lines, docLine{text: s.Title, heading: true, hue: headingHues[i%len(headingHues)]})
		for _, l := range s.Lines {
			p.lines = append(p.lines, docLine{text: l})
		}
		p.lines = append(p.lines, docLine{})
	}
	p.lines = append(p.lines, docLine{text: fmt.Sprintf("Copyright (c) %d AI Search Engine. All rights reserved.", time.Now().Year())})
	return p
}

// maxOffset is the furthest the page scrolls
func (p *docsPage) maxOffset() int {
	content := len(p.lines)*docsLineHeight + 2*docsMargin
	if content <= p.height {
		return 0
	}
	return content - p.height
}

func (p *docsPage) Update(in Input, now time.Time, elapsed time.Duration) error {
	switch {
	case in.Repeating(ebiten.KeyArrowDown):
		p.offset += docsScrollStep
	case in.Repeating(ebiten.KeyArrowUp):
		p.offset -= docsScrollStep
	case in.JustPressed(ebiten.KeyHome):
		p.offset = 0
	case in.JustPressed(ebiten.KeyEnd):
		p.offset = p.maxOffset()
	}
	p.offset = max(0, min(p.offset, p.maxOffset()))
	return nil
}

func (p *docsPage) Draw(screen *ebiten.Image) {
	y := docsMargin - p.offset
	for _, l := range p.lines {
		if y > -docsLineHeight && y < p.height {
			if l.heading {
				vector.DrawFilledRect(screen, docsMargin-12, float32(y+4), 4, 8, hue(l.hue), false)
				vector.StrokeLine(screen, docsMargin, float32(y+docsLineHeight-2),
					float32(docsMargin+len(l.text)*glyphWidth), float32(y+docsLineHeight-2), 1, hue(l.hue), false)
			}
			ebitenutil.DebugPrintAt(screen, l.text, docsMargin, y)
		}
		y += docsLineHeight
	}
	vector.StrokeLine(screen, docsMargin/2, 0, docsMargin/2, float32(p.height), 1, color.RGBA{0x37, 0x41, 0x51, 0xff}, false)
}

func (p *docsPage) Resize(width, height int) {
	p.width, p.height = width, height
	p.offset = max(0, min(p.offset, p.maxOffset()))
}

func (p *docsPage) Status() string {
	return fmt.Sprintf("line %d/%d", p.offset/docsLineHeight+1, len(p.lines))
}

func (p *docsPage) Close() {}
