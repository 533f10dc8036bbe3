package tui

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"skybrawl/client"
	"skybrawl/scene"
	"skybrawl/world"
)

// 状态提示文本
const (
	TextConnecting    = "Attempting to connect..."
	TextConnectFailed = "Could not connect to the remote server!"
	TextLostServer    = "Lost connection to server"
	TextSuccess       = "Mission success!"
	TextGameOver      = "Game over"
	TextInvite        = "Press Enter to add a second local player"
)

// DrawOptions 绘制选项，每次绘制显式传入
type DrawOptions struct {
	ShowBounds bool // 绘制碰撞框轮廓
}

var (
	styleLocal      = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleRemote     = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleExplosion  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	stylePickup     = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	stylePlatform   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleProjectile = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleBounds     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleText       = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
)

// Renderer 把世界按比例缩放到终端字符网格
type Renderer struct {
	screen tcell.Screen
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Draw 绘制整个会话：世界、HUD、公告与状态提示
func (r *Renderer) Draw(s *client.Session, opts DrawOptions) {
	r.screen.Clear()
	w, h := r.screen.Size()

	switch s.State() {
	case client.StateConnecting:
		r.centered(h/2, TextConnecting)
	case client.StateFailed:
		r.centered(h/2, TextConnectFailed)
	case client.StateDisconnected:
		r.centered(h/2, TextLostServer)
	default:
		r.DrawWorld(s.World(), s.IsLocal, opts)
		r.hud(s, w)
		if msg := s.Broadcast(); msg != "" {
			r.centered(2, msg)
		}
		if len(s.LocalIDs()) == 1 {
			r.text(0, h-1, TextInvite, styleBounds, w)
		}
		switch s.Outcome() {
		case client.OutcomeSuccess:
			r.centered(h/2, TextSuccess)
		case client.OutcomeFailure:
			r.centered(h/2, TextGameOver)
		}
	}
	r.screen.Show()
}

// DrawWorld 绘制全部可绘制实体；local 判断角色是否为本地权威
func (r *Renderer) DrawWorld(wd *world.World, local func(id int32) bool, opts DrawOptions) {
	if wd == nil {
		return
	}
	cols, rows := r.screen.Size()
	b := wd.Bounds()
	sx := float64(cols) / b.Width
	sy := float64(rows) / b.Height

	wd.Draw(func(at, size scene.Vec2, a world.Appearance) {
		rect := scene.RectAround(at, size)
		x0 := int(math.Floor(rect.Left * sx))
		y0 := int(math.Floor(rect.Top * sy))
		x1 := max(x0, int(math.Ceil(rect.Right()*sx))-1)
		y1 := max(y0, int(math.Ceil(rect.Bottom()*sy))-1)

		ch, style := glyph(a, local)
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if x < 0 || y < 0 || x >= cols || y >= rows {
					continue
				}
				edge := x == x0 || x == x1 || y == y0 || y == y1
				switch {
				case opts.ShowBounds && edge:
					r.screen.SetContent(x, y, '·', nil, styleBounds)
				default:
					r.screen.SetContent(x, y, ch, nil, style)
				}
			}
		}
	})
}

func glyph(a world.Appearance, local func(int32) bool) (rune, tcell.Style) {
	switch a.Kind {
	case world.KindCharacter:
		if a.Exploding {
			return '*', styleExplosion
		}
		if local != nil && local(a.ID) {
			return '@', styleLocal
		}
		return '&', styleRemote
	case world.KindPickup:
		return [...]rune{'+', '!', '^'}[a.Variant%3], stylePickup
	case world.KindPlatform:
		return '=', stylePlatform
	case world.KindProjectile:
		if world.ProjectileKind(a.Variant) == world.Missile {
			return '>', styleProjectile
		}
		return '-', styleProjectile
	}
	return '?', tcell.StyleDefault
}

// hud 首行显示本地角色的生命、导弹与击退系数
func (r *Renderer) hud(s *client.Session, width int) {
	x := 0
	for i, id := range s.LocalIDs() {
		c, ok := s.World().Character(id)
		if !ok {
			continue
		}
		text := fmt.Sprintf("P%d hp:%d missiles:%d knockback:%.0f   ", i+1, c.Hitpoints(), c.Ammo(), c.Knockback())
		x = r.text(x, 0, text, styleText, width)
	}
}

func (r *Renderer) centered(y int, text string) {
	w, _ := r.screen.Size()
	r.text((w-len([]rune(text)))/2, y, text, styleText, w)
}

func (r *Renderer) text(x, y int, text string, style tcell.Style, width int) int {
	for _, ch := range text {
		if x >= 0 && x < width {
			r.screen.SetContent(x, y, ch, nil, style)
		}
		x++
	}
	return x
}
