package world

import (
	"time"

	"skybrawl/scene"
)

// 命令动作
const (
	cmdAccelerate scene.Action = iota + 1
	cmdJump
	cmdFire
	cmdLaunchMissile
	cmdSpawnProjectile
	cmdPlaySound
	cmdRemoveOffscreen
)

func (w *World) commandHandlers() scene.Handlers {
	return scene.Handlers{
		cmdAccelerate: w.withCharacter(func(c *Character, cmd scene.Command) {
			c.Accelerate(cmd.Vec)
		}),
		cmdJump: w.withCharacter(func(c *Character, _ scene.Command) {
			c.Jump()
		}),
		cmdFire: w.withCharacter(func(c *Character, _ scene.Command) {
			c.Fire()
		}),
		cmdLaunchMissile: w.withCharacter(func(c *Character, _ scene.Command) {
			c.LaunchMissile()
		}),
		cmdSpawnProjectile: func(id scene.NodeID, cmd scene.Command, _ time.Duration) {
			if id != w.layer {
				return
			}
			owner, ok := w.characters[cmd.Target]
			kind := ProjectileKind(cmd.Value)
			if !ok || owner.Destroyed() || kind < 0 || kind >= ProjectileKindCount {
				return
			}
			w.createProjectile(owner, kind)
		},
		cmdPlaySound: func(id scene.NodeID, cmd scene.Command, _ time.Duration) {
			if s, ok := w.graph.Payload(id).(*soundNode); ok {
				s.play(cmd)
			}
		},
		cmdRemoveOffscreen: func(id scene.NodeID, _ scene.Command, _ time.Duration) {
			view := w.Bounds()
			view.Left -= OffscreenMargin
			view.Top -= OffscreenMargin
			view.Width += 2 * OffscreenMargin
			view.Height += 2 * OffscreenMargin
			if !view.Intersects(w.graph.Bounds(id)) {
				w.graph.MarkForRemoval(id)
			}
		},
	}
}

// withCharacter 只对 Target 指定的存活角色生效
func (w *World) withCharacter(fn func(c *Character, cmd scene.Command)) scene.Handler {
	return func(id scene.NodeID, cmd scene.Command, _ time.Duration) {
		c, ok := w.graph.Payload(id).(*Character)
		if !ok || c.id != cmd.Target || c.Destroyed() {
			return
		}
		fn(c, cmd)
	}
}

// Act 将玩家动作转换为命令，下一次 Update 时生效。
// 持续动作需要在按住期间每帧调用
func (w *World) Act(id int32, a Action) {
	cmd := scene.Command{Category: CategoryCharacter, Target: id}
	switch a {
	case MoveLeft:
		cmd.Action, cmd.Vec = cmdAccelerate, scene.Vec2{X: -characterTable.speed}
	case MoveRight:
		cmd.Action, cmd.Vec = cmdAccelerate, scene.Vec2{X: characterTable.speed}
	case Fire:
		cmd.Action = cmdFire
	case Jump:
		cmd.Action = cmdJump
	case LaunchMissile:
		cmd.Action = cmdLaunchMissile
	default:
		return
	}
	w.Push(cmd)
}
