package world

import (
	"time"

	"skybrawl/config"
	"skybrawl/scene"
)

// Entity 场景中的实体；具体种类通过能力接口提供行为
type Entity interface {
	Kind() Kind
	Position() scene.Vec2
}

// Updatable 每帧常规更新
type Updatable interface {
	Update(w *World, dt time.Duration)
}

// Drawable 可由渲染层绘制
type Drawable interface {
	Appearance() Appearance
}

// Collidable 参与碰撞检测
type Collidable interface {
	Bounds() scene.Rect
	Destroyed() bool
}

// Appearance 渲染层需要的最小外观描述
type Appearance struct {
	Kind      Kind
	Variant   int   // 道具/投射物/平台的子类型
	ID        int32 // 角色标识
	Exploding bool
}

// Body 各类实体共享的字段，按值嵌入
type Body struct {
	graph     *scene.Graph
	node      scene.NodeID
	velocity  scene.Vec2
	hitpoints int
}

// Node 对应的场景节点
func (b *Body) Node() scene.NodeID { return b.node }

// Position 世界坐标
func (b *Body) Position() scene.Vec2 { return b.graph.WorldPosition(b.node) }

// SetPosition 设置世界坐标（实体挂在层节点下，层节点不移动）
func (b *Body) SetPosition(p scene.Vec2) {
	parent := b.graph.Parent(b.node)
	b.graph.SetPosition(b.node, p.Sub(b.graph.WorldPosition(parent)))
}

// Bounds 世界坐标包围盒
func (b *Body) Bounds() scene.Rect { return b.graph.Bounds(b.node) }

func (b *Body) Velocity() scene.Vec2 { return b.velocity }
func (b *Body) SetVelocity(v scene.Vec2) { b.velocity = v }
func (b *Body) Accelerate(v scene.Vec2) { b.velocity = b.velocity.Add(v) }

func (b *Body) Hitpoints() int { return b.hitpoints }
func (b *Body) SetHitpoints(n int) { b.hitpoints = n }
func (b *Body) Repair(n int) { b.hitpoints += n }
func (b *Body) Damage(n int) { b.hitpoints -= n }

// Destroy 将生命值清零
func (b *Body) Destroy() { b.hitpoints = 0 }

// Destroyed 生命值耗尽
func (b *Body) Destroyed() bool { return b.hitpoints <= 0 }

// integrate 按速度推进位置
func (b *Body) integrate(dt time.Duration) {
	b.graph.Move(b.node, b.velocity.Scale(dt.Seconds()))
}

// Character 可操控角色
type Character struct {
	Body
	id        int32
	ammo      int
	knockback float64
	grounded  bool

	fireRate      int
	fireCountdown time.Duration
	firing        bool
	launching     bool
	jumpLeft      time.Duration
	shootDir      float64
	lastFireX     float64

	exploding    bool
	explosionAge time.Duration
}

func (c *Character) Kind() Kind { return KindCharacter }

func (c *Character) ID() int32 { return c.id }

func (c *Character) Ammo() int { return c.ammo }
func (c *Character) SetAmmo(n int) { c.ammo = n }
func (c *Character) CollectMissiles(n int) { c.ammo += n }

func (c *Character) Knockback() float64 { return c.knockback }
func (c *Character) SetKnockback(k float64) { c.knockback = k }
func (c *Character) IncrementKnockback(k float64) { c.knockback += k }

// Grounded 本帧是否站在平台上
func (c *Character) Grounded() bool { return c.grounded }

// FireRate 射速等级
func (c *Character) FireRate() int { return c.fireRate }

// IncreaseFireRate 提升射速，最多 MaxFireRate 级
func (c *Character) IncreaseFireRate() {
	if c.fireRate < MaxFireRate {
		c.fireRate++
	}
}

// Jump 仅在着地时起跳；之后 JumpDuration 内每帧持续获得向上速度
func (c *Character) Jump() {
	if c.grounded {
		c.jumpLeft = JumpDuration
		c.velocity.Y -= JumpSpeed
		c.grounded = false
	}
}

// Fire 请求开火，受射击间隔限制
func (c *Character) Fire() { c.firing = true }

// LaunchMissile 消耗一枚导弹
func (c *Character) LaunchMissile() {
	if c.ammo > 0 {
		c.launching = true
		c.ammo--
	}
}

// MarkedForRemoval 爆炸动画播完后可以移除
func (c *Character) MarkedForRemoval() bool {
	return c.Destroyed() && c.explosionAge >= ExplosionTime
}

func (c *Character) Appearance() Appearance {
	return Appearance{Kind: KindCharacter, ID: c.id, Exploding: c.exploding}
}

func (c *Character) Update(w *World, dt time.Duration) {
	if c.Destroyed() {
		if !c.exploding {
			c.exploding = true
			effect := SoundExplosion1
			if c.id%2 != 0 {
				effect = SoundExplosion2
			}
			w.playSound(effect, c.Position())
		}
		c.explosionAge += dt
		if c.MarkedForRemoval() {
			w.graph.MarkForRemoval(c.node)
		}
		return
	}

	c.checkProjectileLaunch(w, dt)
	c.integrate(dt)
}

func (c *Character) checkProjectileLaunch(w *World, dt time.Duration) {
	if c.firing && c.fireCountdown <= 0 {
		w.Push(scene.Command{Category: CategoryLayer, Action: cmdSpawnProjectile, Target: c.id, Value: int32(Bullet)})
		w.playSound(SoundGunfire, c.Position())
		c.fireCountdown += time.Duration(float64(characterTable.fireInterval) / float64(c.fireRate+1))
		c.firing = false
	} else if c.fireCountdown > 0 {
		c.fireCountdown -= dt
		c.firing = false
	}

	if c.launching {
		w.Push(scene.Command{Category: CategoryLayer, Action: cmdSpawnProjectile, Target: c.id, Value: int32(Missile)})
		w.playSound(SoundLaunchMissile, c.Position())
		c.launching = false
	}
}

// shootDirection 沿上次开火后的水平移动方向射击
func (c *Character) shootDirection() float64 {
	x := c.Position().X
	switch {
	case c.lastFireX > x:
		c.shootDir = -1
	case c.lastFireX < x:
		c.shootDir = 1
	}
	c.lastFireX = x
	return c.shootDir
}

// Pickup 可拾取道具
type Pickup struct {
	Body
	kind     PickupKind
	grounded bool
}

func (p *Pickup) Kind() Kind { return KindPickup }
func (p *Pickup) PickupKind() PickupKind { return p.kind }
func (p *Pickup) Grounded() bool { return p.grounded }
func (p *Pickup) Appearance() Appearance { return Appearance{Kind: KindPickup, Variant: int(p.kind)} }

// Apply 对角色生效
func (p *Pickup) Apply(c *Character) { pickupTable[p.kind].apply(c) }

func (p *Pickup) Update(w *World, dt time.Duration) {
	if p.Destroyed() {
		w.graph.MarkForRemoval(p.node)
		return
	}
	p.velocity = scene.Vec2{}
	if !p.grounded {
		p.velocity.Y = w.cfg.Gravity
	}
	p.integrate(dt)
}

// Platform 静止平台
type Platform struct {
	Body
	kind config.PlatformKind
}

func (p *Platform) Kind() Kind { return KindPlatform }
func (p *Platform) PlatformKind() config.PlatformKind { return p.kind }
func (p *Platform) Appearance() Appearance { return Appearance{Kind: KindPlatform, Variant: int(p.kind)} }

// Projectile 子弹或导弹；导弹为制导型
type Projectile struct {
	Body
	kind  ProjectileKind
	owner int32
}

func (p *Projectile) Kind() Kind { return KindProjectile }
func (p *Projectile) ProjectileKind() ProjectileKind { return p.kind }
func (p *Projectile) Owner() int32 { return p.owner }
func (p *Projectile) Guided() bool { return p.kind == Missile }
func (p *Projectile) Appearance() Appearance { return Appearance{Kind: KindProjectile, Variant: int(p.kind)} }

// GuideTowards 将速度方向朝目标偏转，速率不变
func (p *Projectile) GuideTowards(target scene.Vec2, dt time.Duration) {
	dir := target.Sub(p.Position()).Unit()
	if dir.IsZero() {
		return
	}
	speed := projectileTable[p.kind].speed
	v := dir.Scale(MissileApproach * dt.Seconds()).Add(p.velocity)
	p.velocity = v.Unit().Scale(speed)
}

func (p *Projectile) Update(w *World, dt time.Duration) {
	if p.Destroyed() {
		w.graph.MarkForRemoval(p.node)
		return
	}
	p.integrate(dt)
}
