package ui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/olivierh59500/neuralsearch/internal/field"
	"github.com/olivierh59500/neuralsearch/internal/flow"
	"github.com/olivierh59500/neuralsearch/internal/search"
)

// Search page layout
const (
	sidebarWidth   = 256
	contentMargin  = 32
	rowHeight      = 18
	maxQueryRunes  = 200
	streakWidth    = 2
	fadeAlpha      = 13 // 0.05 of 255
	springFPS      = 60
	pulseFrequency = 6.0
	pulseDamping   = 0.3
	fadeFrequency  = 8.0
	fadeDamping    = 1.0
)

var (
	streakColor = mgl32.Vec3{64.0 / 255, 128.0 / 255, 1}
	readyColor  = color.RGBA{0x3e, 0xf0, 0x59, 0xff}
	busyColor   = color.RGBA{0x3b, 0x82, 0xf6, 0xff}
	liveColor   = color.RGBA{0x22, 0xc5, 0x5e, 0xff}
	borderColor = color.NRGBA{0x3b, 0x82, 0xf6, 0x33}
	boxColor    = color.NRGBA{0x11, 0x18, 0x27, 0x80}
	selectColor = color.NRGBA{0x3b, 0x82, 0xf6, 0x66}
)

// searchPage is the query screen. It owns the trending poller and the
// search session and stops both in Close.
type searchPage struct {
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	bg      *flow.Background
	poller  *search.Poller
	session *search.Session

	width, height int
	fade          *ebiten.Image

	query    []rune
	selected int // Trending item picked with the arrows, -1 for none
	opened   time.Time
	now      time.Time

	trending    []string
	live        bool
	trendingMsg string

	state  search.State
	errMsg string

	spring           harmonica.Spring
	pulse, pulseVel  float64
	fader            harmonica.Spring
	stepAlpha, stepV []float64

	closed bool
}

func newSearchPage(parent context.Context, deps Deps, width, height int, rng *rand.Rand) (*searchPage, error) {
	if deps.Backend == nil {
		return nil, errors.New("search page: no backend")
	}
	bg, err := flow.New(deps.Config.Flow, width, height, rng)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger.Named("search")
	ctx, cancel := context.WithCancel(parent)
	session := search.NewSession(ctx, deps.Backend,
		search.WithSteps(search.ThinkingSteps, deps.Config.StepDelay),
		search.WithSessionLogger(logger),
	)
	p := &searchPage{
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		bg:       bg,
		poller:   search.NewPoller(deps.Backend, deps.Config.PollInterval, logger.Named("trending")),
		session:  session,
		width:    width,
		height:   height,
		selected: -1,
		live:     true,
		spring:   harmonica.NewSpring(harmonica.FPS(springFPS), pulseFrequency, pulseDamping),
		fader:    harmonica.NewSpring(harmonica.FPS(springFPS), fadeFrequency, fadeDamping),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.poller.Run(ctx)
	}()
	return p, nil
}

func (p *searchPage) Update(in Input, now time.Time, elapsed time.Duration) error {
	if p.opened.IsZero() {
		p.opened = now
	}
	p.now = now
	p.drainTrending()
	p.handleInput(in)

	prev := p.state.Outcome
	p.state = p.session.Poll()
	if out := p.state.Outcome; out != nil && out != prev {
		p.errMsg = out.Message
	}

	target := 0.0
	if p.state.Active {
		target = 1
	}
	p.pulse, p.pulseVel = p.spring.Update(p.pulse, p.pulseVel, target)
	p.fadeSteps(len(p.state.Steps))

	if elapsed > 0 {
		p.bg.Step(float64(field.StepScale(elapsed)))
	}
	return nil
}

// drainTrending applies the newest poller update, if any
func (p *searchPage) drainTrending() {
	select {
	case u := <-p.poller.Updates():
		p.applyTrending(u)
	default:
	}
}

// applyTrending keeps the previous items when a fetch fails or the field is missing
func (p *searchPage) applyTrending(u search.TrendingUpdate) {
	p.live = u.Live
	if u.Err != nil {
		p.trendingMsg = u.Message
		return
	}
	p.trendingMsg = ""
	if u.Items != nil {
		p.trending = u.Items
		if p.selected >= len(p.trending) {
			p.selected = -1
		}
	}
}

func (p *searchPage) handleInput(in Input) {
	for _, r := range in.Chars() {
		if unicode.IsPrint(r) && len(p.query) < maxQueryRunes {
			p.query = append(p.query, r)
			p.selected = -1
		}
	}
	switch {
	case in.Repeating(ebiten.KeyBackspace):
		if len(p.query) > 0 {
			p.query = p.query[:len(p.query)-1]
		}
	case in.Repeating(ebiten.KeyArrowDown):
		if len(p.trending) > 0 {
			p.selected = (p.selected + 1) % len(p.trending)
		}
	case in.Repeating(ebiten.KeyArrowUp):
		if len(p.trending) > 0 {
			p.selected--
			if p.selected < 0 {
				p.selected = len(p.trending) - 1
			}
		}
	case in.JustPressed(ebiten.KeyEnter), in.JustPressed(ebiten.KeyNumpadEnter):
		p.submit()
	}
}

// submit searches the typed query, or the selected trending item when nothing is typed
func (p *searchPage) submit() {
	q := strings.TrimSpace(string(p.query))
	if q == "" && p.selected >= 0 && p.selected < len(p.trending) {
		q = p.trending[p.selected]
		p.query = []rune(q)
	}
	err := p.session.Submit(q)
	switch {
	case err == nil:
		p.errMsg = ""
		p.selected = -1
	case errors.Is(err, search.ErrEmptyQuery), errors.Is(err, search.ErrBusy):
	default:
		p.logger.Warn("submit failed", zap.Error(err))
	}
}

// fadeSteps springs the opacity of each visible step towards 1
func (p *searchPage) fadeSteps(n int) {
	if n < len(p.stepAlpha) {
		p.stepAlpha, p.stepV = p.stepAlpha[:n], p.stepV[:n]
	}
	for len(p.stepAlpha) < n {
		p.stepAlpha = append(p.stepAlpha, 0)
		p.stepV = append(p.stepV, 0)
	}
	for i := range p.stepAlpha {
		p.stepAlpha[i], p.stepV[i] = p.fader.Update(p.stepAlpha[i], p.stepV[i], 1)
	}
}

func (p *searchPage) Draw(screen *ebiten.Image) {
	p.drawStreaks(screen)
	p.drawSidebar(screen)
	p.drawMain(screen)
}

// drawStreaks fades the previous streaks and draws the new ones
func (p *searchPage) drawStreaks(screen *ebiten.Image) {
	if p.fade == nil {
		p.fade = ebiten.NewImage(p.width, p.height)
	}
	vector.DrawFilledRect(p.fade, 0, 0, float32(p.width), float32(p.height), color.RGBA{0, 0, 0, fadeAlpha}, false)
	for _, s := range p.bg.Streaks() {
		x0, y0, x1, y1, alpha := p.bg.Segment(s)
		vector.StrokeLine(p.fade, float32(x0), float32(y0), float32(x1), float32(y1), streakWidth,
			premultiplied(streakColor, float32(alpha)), true)
	}
	screen.DrawImage(p.fade, nil)
}

func (p *searchPage) drawSidebar(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, sidebarWidth, float32(p.height), panelColor, false)
	vector.StrokeLine(screen, sidebarWidth, 0, sidebarWidth, float32(p.height), 1, borderColor, false)

	dot := liveColor
	if !p.live {
		dot = errorColor
	}
	ebitenutil.DebugPrintAt(screen, "Live Trends", 16, 20)
	vector.DrawFilledCircle(screen, 16+12*glyphWidth+6, 28, 4, dot, true)

	y := 56
	if p.trendingMsg != "" {
		vector.DrawFilledRect(screen, 12, float32(y-2), sidebarWidth-24, rowHeight+4, errorColor, false)
		ebitenutil.DebugPrintAt(screen, truncate(p.trendingMsg, (sidebarWidth-32)/glyphWidth), 16, y)
		y += rowHeight + 12
	}
	if len(p.trending) == 0 {
		ebitenutil.DebugPrintAt(screen, "Loading Trend Data", 16, y)
		return
	}
	for i, t := range p.trending {
		fill := boxColor
		if i == p.selected {
			fill = selectColor
		}
		vector.DrawFilledRect(screen, 12, float32(y-4), sidebarWidth-24, rowHeight+8, fill, false)
		ebitenutil.DebugPrintAt(screen, truncate(t, (sidebarWidth-32)/glyphWidth), 16, y)
		y += rowHeight + 14
	}
}

func (p *searchPage) drawMain(screen *ebiten.Image) {
	left := sidebarWidth + contentMargin
	width := p.width - left - contentMargin
	cols := max(8, width/glyphWidth)
	y := 48

	status, dot := "Ready", readyColor
	if p.state.Active {
		status, dot = "Processing", busyColor
	}
	vector.DrawFilledCircle(screen, float32(left+6), float32(y+7), float32(5+3*p.pulse), dot, true)
	ebitenutil.DebugPrintAt(screen, "AI Engine Status: "+status, left+20, y)
	y += 36

	vector.DrawFilledRect(screen, float32(left), float32(y), float32(width), 36, boxColor, false)
	vector.StrokeRect(screen, float32(left), float32(y), float32(width), 36, 1, borderColor, false)
	text := string(p.query)
	if text == "" && !p.state.Active {
		text = "Ask anything..."
	}
	if Cursor(p.now.Sub(p.opened)) {
		text += "_"
	}
	ebitenutil.DebugPrintAt(screen, "> "+tail(text, cols-4), left+10, y+10)
	y += 56

	if p.state.Active {
		for i, step := range p.state.Steps {
			a := float32(0)
			if i < len(p.stepAlpha) {
				a = float32(p.stepAlpha[i])
			}
			vector.DrawFilledCircle(screen, float32(left+6), float32(y+7), 4, premultiplied(streakColor, a), true)
			ebitenutil.DebugPrintAt(screen, truncate(step, cols-4), left+20, y)
			y += rowHeight + 6
		}
		return
	}

	if p.errMsg != "" {
		vector.DrawFilledRect(screen, float32(left), float32(y), float32(width), rowHeight+16, premultiplied(mgl32.Vec3{0.94, 0.27, 0.27}, 0.3), false)
		ebitenutil.DebugPrintAt(screen, truncate(p.errMsg, cols-4), left+10, y+8)
		y += rowHeight + 32
	}

	out := p.state.Outcome
	if out == nil || len(out.Results) == 0 {
		return
	}
	ebitenutil.DebugPrintAt(screen, "Neural Network Results", left, y)
	y += rowHeight + 10
	for _, r := range out.Results {
		if y > p.height-3*rowHeight {
			break
		}
		title := r.Title
		if r.RelevanceScore != nil {
			title = fmt.Sprintf("%s  [%.2f]", title, *r.RelevanceScore)
		}
		lines := []string{truncate(title, cols-4)}
		if r.Snippet != "" {
			lines = append(lines, truncate(r.Snippet, cols-4))
		}
		lines = append(lines, truncate(r.Link, cols-4))

		h := len(lines)*rowHeight + 12
		vector.DrawFilledRect(screen, float32(left), float32(y), float32(width), float32(h), boxColor, false)
		vector.StrokeRect(screen, float32(left), float32(y), float32(width), float32(h), 1, borderColor, false)
		for i, l := range lines {
			ebitenutil.DebugPrintAt(screen, l, left+10, y+6+i*rowHeight)
		}
		y += h + 10
	}
}

func (p *searchPage) Resize(width, height int) {
	p.width, p.height = width, height
	p.bg.Resize(width, height)
	if p.fade != nil {
		p.fade.Deallocate()
		p.fade = nil
	}
}

func (p *searchPage) Status() string {
	s := fmt.Sprintf("trending %d", len(p.trending))
	if p.state.Query != "" {
		s += fmt.Sprintf("  query %q", p.state.Query)
	}
	if out := p.state.Outcome; out != nil && !p.state.Active {
		s += fmt.Sprintf("  results %d", len(out.Results))
	}
	return s
}

// Close stops the poller and any running search, then frees the fade image
func (p *searchPage) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.cancel()
	p.session.Close()
	p.wg.Wait()
	if p.fade != nil {
		p.fade.Deallocate()
		p.fade = nil
	}
	p.logger.Debug("search page unmounted")
}

// truncate shortens s to n runes, marking the cut
func truncate(s string, n int) string {
	r := []rune(s)
	switch {
	case len(r) <= n:
		return s
	case n <= 3:
		return string(r[:max(n, 0)])
	default:
		return string(r[:n-3]) + "..."
	}
}

// tail keeps the last n runes of s
func tail(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
