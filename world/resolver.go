package world

import (
	"math"

	"skybrawl/scene"
)

// handleCollisions 越界、角色互撞、拾取道具、投射物命中
func (w *World) handleCollisions() {
	bounds := w.Bounds()
	for _, c := range w.Characters() {
		if c.Destroyed() {
			continue
		}
		p := c.Position()
		if p.X < bounds.Left || p.X > bounds.Right() || p.Y < bounds.Top || p.Y > bounds.Bottom() {
			c.Damage(1)
			if !c.Destroyed() {
				c.SetPosition(scene.Vec2{X: w.cfg.Respawn.X, Y: w.cfg.Respawn.Y})
				c.knockback = BaseKnockback
			}
		}
	}

	for _, pair := range w.graph.CollisionPairs(w.collidable) {
		switch {
		case w.graph.MatchesCategories(&pair, CategoryCharacter, CategoryCharacter):
			bounce(w.character(pair.First), w.character(pair.Second))

		case w.graph.MatchesCategories(&pair, CategoryCharacter, CategoryPickup):
			c := w.character(pair.First)
			p := w.graph.Payload(pair.Second).(*Pickup)
			if c.Destroyed() || p.Destroyed() {
				continue
			}
			p.Apply(c)
			p.Destroy()
			w.graph.MarkForRemoval(p.node)
			w.playSound(SoundCollectPickup, c.Position())

		case w.graph.MatchesCategories(&pair, CategoryCharacter, CategoryProjectile):
			c := w.character(pair.First)
			p := w.graph.Payload(pair.Second).(*Projectile)
			if c.id == p.owner || c.Destroyed() || p.Destroyed() {
				continue
			}
			hit(c, p)
			p.Destroy()
			w.graph.MarkForRemoval(p.node)
		}
	}
}

func (w *World) collidable(id scene.NodeID) bool {
	c, ok := w.graph.Payload(id).(Collidable)
	return ok && !c.Destroyed()
}

func (w *World) character(id scene.NodeID) *Character {
	return w.graph.Payload(id).(*Character)
}

// bounce 角色互撞：水平速度绝对值大的一方以自身击退系数作用于对方，
// 另一方以半数系数回敬，被强力撞击的一方击退系数增加。
// 竖直方向速度绝对值大的一方按自身半数系数向上弹起；
// 两者竖直速度相等时改用四分之一系数重新计算水平交换
func bounce(c1, c2 *Character) {
	v1, v2 := c1.velocity, c2.velocity
	k1, k2 := c1.knockback, c2.knockback

	var x1, x2 float64
	switch a1, a2 := math.Abs(v1.X), math.Abs(v2.X); {
	case a1 > a2:
		x2 = k1 * v1.X
		x1 = k2 / 2 * v2.X
		c2.knockback += CollisionKnockbackStep
	case a1 < a2:
		x1 = k2 * v2.X
		x2 = k1 / 2 * v1.X
		c1.knockback += CollisionKnockbackStep
	default:
		x1 = k2 / 2 * v2.X
		x2 = k1 / 2 * v1.X
	}

	var y1, y2 float64
	switch a1, a2 := math.Abs(v1.Y), math.Abs(v2.Y); {
	case a1 > a2:
		y1 = -k1 / 2 * v1.Y
	case a1 < a2:
		y2 = -k2 / 2 * v2.Y
	default:
		// 竖直速度相等时沿用水平公式，保持原有规则
		x1 = k2 / 4 * v2.X
		x2 = k1 / 4 * v1.X
	}

	c1.velocity = scene.Vec2{X: x1, Y: y1}
	c2.velocity = scene.Vec2{X: x2, Y: y2}
}

// hit 投射物命中：制导型按受害者系数全额水平、半数竖直，系数 +20；
// 非制导型两个轴都按四分之一系数，系数 +5
func hit(c *Character, p *Projectile) {
	k := c.knockback
	pv := p.velocity
	if p.Guided() {
		c.velocity = scene.Vec2{X: k * pv.X, Y: k / 2 * pv.Y}
		c.knockback += MissileKnockbackStep
		return
	}
	c.velocity = scene.Vec2{X: k / 4 * pv.X, Y: k / 4 * pv.Y}
	c.knockback += BulletKnockbackStep
}

// handlePlatforms 平台支撑：先清除着地标记，再对重叠的角色和道具贴合平台顶面。
// 投射物碰到平台即销毁
func (w *World) handlePlatforms() {
	for _, c := range w.characters {
		c.grounded = false
	}
	w.graph.Walk(func(id scene.NodeID) {
		if p, ok := w.graph.Payload(id).(*Pickup); ok {
			p.grounded = false
		}
	})

	for _, pair := range w.graph.CollisionPairs(w.collidable) {
		switch {
		case w.graph.MatchesCategories(&pair, CategoryCharacter, CategoryPlatform):
			c := w.character(pair.First)
			pl := w.graph.Payload(pair.Second).(*Platform)
			if c.grounded {
				continue
			}
			c.velocity.Y = 0
			c.SetPosition(scene.Vec2{X: c.Position().X, Y: pl.Position().Y - platformTable[pl.kind].characterOffset})
			c.grounded = true
			c.jumpLeft = 0

		case w.graph.MatchesCategories(&pair, CategoryPickup, CategoryPlatform):
			p := w.graph.Payload(pair.First).(*Pickup)
			pl := w.graph.Payload(pair.Second).(*Platform)
			if p.grounded {
				continue
			}
			p.velocity.Y = 0
			p.SetPosition(scene.Vec2{X: p.Position().X, Y: pl.Position().Y - platformTable[pl.kind].pickupOffset})
			p.grounded = true

		case w.graph.MatchesCategories(&pair, CategoryProjectile, CategoryPlatform):
			p := w.graph.Payload(pair.First).(*Projectile)
			p.Destroy()
			w.graph.MarkForRemoval(p.node)
		}
	}
}
