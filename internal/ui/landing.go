package ui

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/olivierh59500/neuralsearch/internal/camera"
	"github.com/olivierh59500/neuralsearch/internal/config"
	"github.com/olivierh59500/neuralsearch/internal/field"
)

// Landing page text
const (
	Headline = "Next-Gen AI Search Engine"
	tagline  = "Powered by advanced AI to deliver intelligent, context-aware search results"
	actions  = "[F3] Try AI Search Engine      [F2] View Documentation"
)

var features = []string{"Neural Processing", "Machine Learning", "Deep Learning"}

// Landing page tuning
const (
	pointRadius       = 1.5
	lineWidth         = 1
	headlineScale     = 4
	glyphWidth        = 6 // ebitenutil debug font
	glyphHeight       = 16
	distanceStep      = 10
	noticeDuration    = 3 * time.Second
	headlineHueCenter = 260.0
	headlineHueSwing  = 60.0
)

// landingPage shows the rotating globe under the typewriter headline
type landingPage struct {
	deps   Deps
	logger *zap.Logger
	rng    *rand.Rand

	field  *field.Field
	cam    *camera.Camera
	frame  field.Frame
	screen []float32 // projected points, xy pairs
	lines  []float32 // projected line vertices, xy pairs
	alphaK int       // line color component used to recover alpha

	tw       Typewriter
	start    time.Time
	now      time.Time
	headline *ebiten.Image

	notice      string
	noticeUntil time.Time
	closed      bool
}

func newLandingPage(deps Deps, width, height int, rng *rand.Rand) (*landingPage, error) {
	f, err := field.New(deps.Config.Field, rng)
	if err != nil {
		return nil, err
	}
	p := &landingPage{
		deps:   deps,
		logger: deps.Logger.Named("landing"),
		rng:    rng,
		field:  f,
		cam:    camera.New(width, height),
		tw:     NewTypewriter(Headline),
	}
	p.alphaK = strongest(f.LineColor())
	p.logger.Debug("globe mounted",
		zap.Int("particles", f.Config().Count),
		zap.String("index", string(f.Config().Index)),
	)
	return p, nil
}

// strongest returns the index of the largest component of c
func strongest(c mgl32.Vec3) int {
	k := 0
	for i := 1; i < 3; i++ {
		if c[i] > c[k] {
			k = i
		}
	}
	return k
}

func (p *landingPage) Update(in Input, now time.Time, elapsed time.Duration) error {
	if p.start.IsZero() {
		p.start = now
	}
	p.now = now

	switch {
	case in.JustPressed(ebiten.KeyF6):
		cfg := p.field.Config()
		p.field.SetLimitConnections(!cfg.LimitConnections)
		p.say(fmt.Sprintf("connection limit %v", !cfg.LimitConnections))
	case in.JustPressed(ebiten.KeyF7):
		next := field.IndexGrid
		if p.field.Config().Index == field.IndexGrid {
			next = field.IndexBrute
		}
		if err := p.field.SetIndex(next); err != nil {
			return err
		}
		p.say("index " + string(next))
	case in.JustPressed(ebiten.KeyF8):
		p.savePreset()
	case in.JustPressed(ebiten.KeyF9):
		p.loadPreset()
	case in.Repeating(ebiten.KeyPageUp):
		p.field.SetMinDistance(p.field.Config().MinDistance + distanceStep)
	case in.Repeating(ebiten.KeyPageDown):
		p.field.SetMinDistance(p.field.Config().MinDistance - distanceStep)
	}

	if elapsed > 0 {
		p.frame = p.field.Step(elapsed)
		p.cam.Advance(elapsed.Seconds())
	}
	return nil
}

// say shows a short notice in the status line
func (p *landingPage) say(msg string) {
	p.notice = msg
	p.noticeUntil = p.now.Add(noticeDuration)
}

func (p *landingPage) savePreset() {
	path := p.deps.Config.PresetPath
	if err := config.SavePreset(path, p.field.Config()); err != nil {
		p.logger.Warn("save preset failed", zap.String("path", path), zap.Error(err))
		p.say("save failed")
		return
	}
	p.logger.Info("preset saved", zap.String("path", path))
	p.say("saved " + path)
}

// loadPreset replaces the field with one built from the preset file
func (p *landingPage) loadPreset() {
	path := p.deps.Config.PresetPath
	cfg, err := config.LoadPreset(path)
	if err == nil {
		var f *field.Field
		if f, err = field.New(cfg, p.rng); err == nil {
			p.field.Dispose()
			p.field = f
			p.frame = field.Frame{}
			p.alphaK = strongest(f.LineColor())
		}
	}
	if err != nil {
		p.logger.Warn("load preset failed", zap.String("path", path), zap.Error(err))
		p.say("load failed")
		return
	}
	p.logger.Info("preset loaded", zap.String("path", path), zap.Int("particles", cfg.Count))
	p.say("loaded " + path)
}

func (p *landingPage) Draw(screen *ebiten.Image) {
	p.drawGlobe(screen)
	p.drawPanel(screen)
}

// drawGlobe projects the current frame and draws lines under points
func (p *landingPage) drawGlobe(screen *ebiten.Image) {
	if p.frame.DrawCount == 0 && len(p.frame.Points) == 0 {
		return
	}
	line := p.field.LineColor()
	p.lines = p.cam.ProjectBuffer(p.frame.Vertices, p.lines)
	for v := 0; v+1 < p.frame.DrawCount; v += 2 {
		x0, y0 := p.lines[v*2], p.lines[v*2+1]
		x1, y1 := p.lines[v*2+2], p.lines[v*2+3]
		if isNaN(x0) || isNaN(x1) {
			continue
		}
		var alpha float32
		if line[p.alphaK] > 0 {
			alpha = p.frame.Colors[v*3+p.alphaK] / line[p.alphaK]
		}
		vector.StrokeLine(screen, x0, y0, x1, y1, lineWidth, premultiplied(line, alpha), true)
	}

	p.screen = p.cam.ProjectBuffer(p.frame.Points, p.screen)
	for i := 0; i+1 < len(p.screen); i += 2 {
		if isNaN(p.screen[i]) {
			continue
		}
		vector.DrawFilledCircle(screen, p.screen[i], p.screen[i+1], pointRadius, pointColor, true)
	}
}

// drawPanel draws the headline, tagline, actions and feature pills
func (p *landingPage) drawPanel(screen *ebiten.Image) {
	w, h := p.cam.Size()
	elapsed := p.now.Sub(p.start)

	text := p.tw.At(elapsed)
	if Cursor(elapsed) {
		text += "|"
	}
	if p.headline == nil {
		p.headline = ebiten.NewImage((len([]rune(Headline))+1)*glyphWidth, glyphHeight)
	}
	p.headline.Clear()
	ebitenutil.DebugPrintAt(p.headline, text, 0, 0)

	full := float64((len([]rune(Headline)) + 1) * glyphWidth * headlineScale)
	top := float64(h)/2 - 80
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(headlineScale, headlineScale)
	op.GeoM.Translate(float64(w)/2-full/2, top)
	op.ColorScale.ScaleWithColor(hue(headlineHueCenter + headlineHueSwing*math.Sin(elapsed.Seconds())))
	screen.DrawImage(p.headline, op)

	centered := func(s string, y int) {
		ebitenutil.DebugPrintAt(screen, s, w/2-len(s)*glyphWidth/2, y)
	}
	y := int(top) + glyphHeight*headlineScale + 16
	centered(tagline, y)
	centered(actions, y+32)

	pills := ""
	for i, f := range features {
		if i > 0 {
			pills += "    "
		}
		pills += "( " + f + " )"
	}
	centered(pills, y+80)
}

func (p *landingPage) Resize(width, height int) {
	p.cam.Resize(width, height)
}

func (p *landingPage) Status() string {
	cfg := p.field.Config()
	s := fmt.Sprintf("connections %d  min distance %.0f  limit %v  index %s",
		p.frame.Connections, cfg.MinDistance, cfg.LimitConnections, cfg.Index)
	if p.notice != "" && p.now.Before(p.noticeUntil) {
		s += "  | " + p.notice
	}
	return s
}

// Close disposes the field and releases the headline image
func (p *landingPage) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.field.Dispose()
	p.frame = field.Frame{}
	if p.headline != nil {
		p.headline.Deallocate()
		p.headline = nil
	}
	p.logger.Debug("globe unmounted")
}

func isNaN(v float32) bool {
	return math.IsNaN(float64(v))
}
