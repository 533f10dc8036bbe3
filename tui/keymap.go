package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"skybrawl/world"
)

// Binding 一个按键对应的本地角色序号与逻辑动作
type Binding struct {
	Player int
	Action world.Action
}

// KeyMap 按键绑定：特殊键按 tcell.Key，字符键按 rune
type KeyMap struct {
	Keys  map[tcell.Key]Binding
	Runes map[rune]Binding
}

// DefaultKeyMap 主角色用方向键，合作伙伴用 WASD
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Keys: map[tcell.Key]Binding{
			tcell.KeyLeft:  {0, world.MoveLeft},
			tcell.KeyRight: {0, world.MoveRight},
			tcell.KeyUp:    {0, world.Jump},
		},
		Runes: map[rune]Binding{
			' ': {0, world.Fire},
			'm': {0, world.LaunchMissile},
			'a': {1, world.MoveLeft},
			'd': {1, world.MoveRight},
			'w': {1, world.Jump},
			'f': {1, world.Fire},
			'e': {1, world.LaunchMissile},
		},
	}
}

// Lookup 查找按键事件对应的绑定
func (k KeyMap) Lookup(ev *tcell.EventKey) (Binding, bool) {
	if ev.Key() == tcell.KeyRune {
		b, ok := k.Runes[ev.Rune()]
		return b, ok
	}
	b, ok := k.Keys[ev.Key()]
	return b, ok
}

// Controller 接收逻辑动作的一方（client.Session）
type Controller interface {
	Press(player int, a world.Action)
	Release(player int, a world.Action)
}

// HoldTimeout 终端没有按键抬起事件：持续动作在这段时间内没有重复按键即视为松开
const HoldTimeout = 300 * time.Millisecond

// Input 把终端按键事件转换成按下/松开
type Input struct {
	keys KeyMap
	held map[Binding]time.Time
}

func NewInput(keys KeyMap) *Input {
	return &Input{keys: keys, held: make(map[Binding]time.Time)}
}

// HandleKey 处理一次按键（包括系统的自动重复）；未绑定的键返回 false
func (in *Input) HandleKey(ev *tcell.EventKey, now time.Time, c Controller) bool {
	b, ok := in.keys.Lookup(ev)
	if !ok {
		return false
	}
	if !b.Action.Realtime() {
		c.Press(b.Player, b.Action)
		return true
	}
	if _, down := in.held[b]; !down {
		c.Press(b.Player, b.Action)
	}
	in.held[b] = now
	return true
}

// Expire 松开超过 HoldTimeout 未重复的持续动作
func (in *Input) Expire(now time.Time, c Controller) {
	for b, last := range in.held {
		if now.Sub(last) > HoldTimeout {
			delete(in.held, b)
			c.Release(b.Player, b.Action)
		}
	}
}

// Reset 忘记所有按住的键（失去焦点、暂停）
func (in *Input) Reset() {
	clear(in.held)
}
