package client

import (
	"skybrawl/world"
)

// Player 一名角色的输入代理。
// 本地角色的持续动作来自键盘，远端角色的持续动作来自服务器转发的 PlayerRealtimeChange
type Player struct {
	id    int32
	local bool
	held  [world.ActionCount]bool
}

func newPlayer(id int32, local bool) *Player {
	return &Player{id: id, local: local}
}

// Holding 该持续动作当前是否按住
func (p *Player) Holding(a world.Action) bool {
	return a.Valid() && p.held[a]
}

// setHeld 更新持续动作状态；返回值表示状态是否发生变化
func (p *Player) setHeld(a world.Action, on bool) bool {
	if !a.Realtime() || p.held[a] == on {
		return false
	}
	p.held[a] = on
	return true
}

func (p *Player) releaseAll() []world.Action {
	var released []world.Action
	for a := world.Action(0); a < world.ActionCount; a++ {
		if p.held[a] {
			p.held[a] = false
			released = append(released, a)
		}
	}
	return released
}

// apply 每帧把按住的持续动作转成世界命令
func (p *Player) apply(w *world.World) {
	for a := world.Action(0); a < world.ActionCount; a++ {
		if p.held[a] {
			w.Act(p.id, a)
		}
	}
}
