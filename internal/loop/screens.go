package loop

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tomz197/invaders/internal/asset"
	"github.com/tomz197/invaders/internal/draw"
	"github.com/tomz197/invaders/internal/loop/config"
	"github.com/tomz197/invaders/internal/object"
)

// Draw paints the scene onto a surface. The title screen shows no scene.
func (s *Session) Draw(ctx object.DrawContext) error {
	if s.GameState == GameStateStart {
		return nil
	}
	ground := s.Screen.Height - 1
	ctx.Canvas.DrawLine(
		draw.Point{X: 0, Y: ground},
		draw.Point{X: s.Screen.Width - 1, Y: ground},
		asset.GroundColor,
	)
	for _, o := range s.Obstacles {
		if err := o.Draw(ctx); err != nil {
			return err
		}
	}
	for _, p := range s.Particles {
		if err := p.Draw(ctx); err != nil {
			return err
		}
	}
	for _, projectiles := range [][]*object.Projectile{s.PlayerProjectiles, s.InvaderProjectiles} {
		for _, p := range projectiles {
			if err := p.Draw(ctx); err != nil {
				return err
			}
		}
	}
	if err := s.Grid.Draw(ctx); err != nil {
		return err
	}
	return s.Player.Draw(ctx)
}

// Overlay draws extra text on top of a frame. It returns true when it
// replaces the regular game screens (e.g. a shutdown notice).
type Overlay func(r *Renderer) bool

// Renderer turns sessions into terminal frames: the scaled canvas first,
// then the HUD and screen boxes written over it.
type Renderer struct {
	canvas   *draw.Canvas
	fw       *draw.FrameWriter
	termSize draw.TermSizeFunc

	box   lipgloss.Style
	title lipgloss.Style
	hud   lipgloss.Style
}

// NewRenderer creates a renderer writing to w, sized by termSize.
func NewRenderer(w io.Writer, termSize draw.TermSizeFunc) *Renderer {
	if termSize == nil {
		termSize = draw.DefaultTermSizeFunc
	}
	termWidth, termHeight, err := draw.TermSize(termSize)
	if err != nil {
		termWidth, termHeight = 80, 24
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	canvas := draw.NewScaledCanvas(renderWidth, renderHeight, config.ViewWidth, config.ViewHeight)
	canvas.SetOffset(offsetCol, offsetRow)
	fw := draw.NewFrameWriter(w)
	fw.SetOrigin(offsetCol, offsetRow, renderWidth)

	lr := lipgloss.NewRenderer(w)
	return &Renderer{
		canvas:   canvas,
		fw:       fw,
		termSize: termSize,
		box: lr.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(asset.InvaderColor.String())).
			Padding(1, 4).
			Align(lipgloss.Center),
		title: lr.NewStyle().Bold(true).Foreground(lipgloss.Color(asset.ShipColor.String())),
		hud:   lr.NewStyle().Bold(true),
	}
}

// Begin prepares the terminal for drawing.
func (r *Renderer) Begin() error {
	return r.fw.Open()
}

// End restores the terminal.
func (r *Renderer) End() error {
	return r.fw.Close()
}

// Width returns the render area width in terminal cells.
func (r *Renderer) Width() int {
	return r.canvas.TerminalWidth()
}

// Height returns the render area height in terminal cells.
func (r *Renderer) Height() int {
	return r.canvas.TerminalHeight()
}

// WriteAt writes text at a 1-based position inside the render area.
func (r *Renderer) WriteAt(col, row int, s string) {
	r.fw.Text(col, row, s)
}

// Resize follows terminal size changes. Size errors keep the last size.
func (r *Renderer) Resize() {
	termWidth, termHeight, err := draw.TermSize(r.termSize)
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	r.canvas.Resize(renderWidth, renderHeight)
	r.canvas.SetOffset(offsetCol, offsetRow)
	r.fw.SetOrigin(offsetCol, offsetRow, renderWidth)
}

// Frame draws one complete frame of s and flushes it to the terminal.
func (r *Renderer) Frame(s *Session, overlays ...Overlay) error {
	r.Resize()

	r.fw.BeginFrame()
	r.canvas.Clear()
	if err := s.Draw(object.DrawContext{Canvas: r.canvas}); err != nil {
		return err
	}
	if err := r.canvas.Render(r.fw); err != nil {
		return err
	}

	replaced := false
	for _, o := range overlays {
		if o != nil && o(r) {
			replaced = true
		}
	}
	if !replaced {
		r.drawScreens(s)
	}
	return r.fw.Flush()
}

// drawScreens draws the HUD or the box for the current game state.
func (r *Renderer) drawScreens(s *Session) {
	switch s.GameState {
	case GameStateStart:
		r.drawStartScreen()
	case GameStatePlaying:
		r.drawPlayingHUD(s.Stats())
	case GameStateGameOver:
		r.drawPlayingHUD(s.Stats())
		r.drawGameOverScreen(s.Stats())
	}
}

// CenterBox draws a bordered box with a title and centered lines in the
// middle of the render area.
func (r *Renderer) CenterBox(title string, lines ...string) {
	body := make([]string, 0, len(lines)+2)
	body = append(body, r.title.Render(title), "")
	body = append(body, lines...)
	box := r.box.Render(lipgloss.JoinVertical(lipgloss.Center, body...))

	rows := strings.Split(box, "\n")
	col := (r.Width()-lipgloss.Width(box))/2 + 1
	row := (r.Height()-len(rows))/2 + 1
	if col < 1 {
		col = 1
	}
	if row < 1 {
		row = 1
	}
	for i, line := range rows {
		r.fw.Text(col, row+i, line)
	}
}

// drawStartScreen draws the title screen.
func (r *Renderer) drawStartScreen() {
	r.CenterBox("S P A C E   I N V A D E R S",
		"A D / < >  . .  Move",
		"SPACE  . . . . Shoot",
		"Q  . . . . . .  Quit",
		"",
		">>  Press SPACE or ENTER to Start  <<",
	)
}

// drawPlayingHUD draws score, level and high score on the top row.
func (r *Renderer) drawPlayingHUD(st Stats) {
	left := fmt.Sprintf("Score: %-6d Level: %-3d", st.Score, st.Level)
	r.fw.Text(2, 1, r.hud.Render(left))

	right := fmt.Sprintf("High: %-6d", st.High)
	r.fw.Text(r.Width()-len(right), 1, r.hud.Render(right))
}

// drawGameOverScreen draws the game over box.
func (r *Renderer) drawGameOverScreen(st Stats) {
	r.CenterBox("G A M E   O V E R",
		fmt.Sprintf("Score: %d", st.Score),
		fmt.Sprintf("Level: %d", st.Level),
		fmt.Sprintf("High score: %d", st.High),
		"",
		">>  Press ENTER to Restart  <<",
		"Q to quit",
	)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return renderWidth, renderHeight, offsetCol, offsetRow
}
