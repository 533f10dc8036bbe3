package world

import (
	"sort"
	"time"

	"skybrawl/config"
	"skybrawl/scene"
)

// World 本地世界模拟：持有场景图、命令队列与全部实体。
// 非并发安全，由客户端帧循环独占使用
type World struct {
	cfg      config.World
	graph    *scene.Graph
	layer    scene.NodeID // 实体层
	sound    scene.NodeID
	commands scene.Queue
	handlers scene.Handlers

	characters map[int32]*Character
}

// New 创建世界并搭建场景：实体层、声音节点与平台
func New(cfg config.World, audio AudioSink) *World {
	g := scene.New()
	w := &World{
		cfg:        cfg,
		graph:      g,
		characters: make(map[int32]*Character),
	}
	w.layer = g.Attach(scene.Root, CategoryLayer, scene.Vec2{}, nil)
	w.sound = g.Attach(scene.Root, CategorySoundEffect, scene.Vec2{}, &soundNode{sink: audio})
	w.handlers = w.commandHandlers()
	for _, p := range cfg.Platforms {
		w.addPlatform(p.Kind, scene.Vec2{X: p.At.X, Y: p.At.Y})
	}
	return w
}

// Graph 底层场景图（只读使用）
func (w *World) Graph() *scene.Graph { return w.graph }

// Bounds 战场边界，供镜头与越界判定使用
func (w *World) Bounds() scene.Rect {
	return scene.Rect{Width: w.cfg.Width, Height: w.cfg.Height}
}

// Height 战场高度
func (w *World) Height() float64 { return w.cfg.Height }

// Push 追加命令，下一次 Update 时分发
func (w *World) Push(cmd scene.Command) { w.commands.Push(cmd) }

// AddCharacter 在指定位置创建角色；已存在则直接返回
func (w *World) AddCharacter(id int32, at scene.Vec2) *Character {
	if c, ok := w.characters[id]; ok {
		return c
	}
	c := &Character{
		id:        id,
		ammo:      characterTable.ammo,
		knockback: BaseKnockback,
		fireRate:  1,
		shootDir:  1,
		lastFireX: at.X,
	}
	c.hitpoints = characterTable.hitpoints
	w.attach(&c.Body, CategoryCharacter, characterTable.size, c, at)
	w.characters[id] = c
	return c
}

// RemoveCharacter 立即移除角色
func (w *World) RemoveCharacter(id int32) {
	c, ok := w.characters[id]
	if !ok {
		return
	}
	w.graph.Detach(c.node, w.onRemove)
}

// Character 按标识查找角色
func (w *World) Character(id int32) (*Character, bool) {
	c, ok := w.characters[id]
	return c, ok
}

// Characters 按标识升序返回全部角色
func (w *World) Characters() []*Character {
	out := make([]*Character, 0, len(w.characters))
	for _, c := range w.characters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// CreatePickup 在指定位置生成道具，未知类型忽略
func (w *World) CreatePickup(kind PickupKind, at scene.Vec2) *Pickup {
	if !kind.Valid() {
		return nil
	}
	p := &Pickup{kind: kind}
	p.hitpoints = 1
	w.attach(&p.Body, CategoryPickup, pickupTable[kind].size, p, at)
	return p
}

func (w *World) addPlatform(kind config.PlatformKind, at scene.Vec2) *Platform {
	data, ok := platformTable[kind]
	if !ok {
		return nil
	}
	p := &Platform{kind: kind}
	p.hitpoints = 1
	w.attach(&p.Body, CategoryPlatform, data.size, p, at)
	return p
}

func (w *World) createProjectile(owner *Character, kind ProjectileKind) *Projectile {
	data := projectileTable[kind]
	p := &Projectile{kind: kind, owner: owner.id}
	p.hitpoints = 1
	at := owner.Position()
	w.attach(&p.Body, data.category, data.size, p, at)
	p.velocity = scene.Vec2{X: owner.shootDirection() * data.speed}
	return p
}

func (w *World) attach(b *Body, category scene.Category, size scene.Vec2, payload Entity, at scene.Vec2) {
	b.graph = w.graph
	b.node = w.graph.Attach(w.layer, category, size, payload)
	b.SetPosition(at)
}

// Entity 节点对应的实体
func (w *World) Entity(id scene.NodeID) (Entity, bool) {
	e, ok := w.graph.Payload(id).(Entity)
	return e, ok
}

// Draw 按场景顺序遍历所有可绘制实体
func (w *World) Draw(fn func(at scene.Vec2, size scene.Vec2, a Appearance)) {
	w.graph.Walk(func(id scene.NodeID) {
		if d, ok := w.graph.Payload(id).(Drawable); ok {
			fn(w.graph.WorldPosition(id), w.graph.Size(id), d.Appearance())
		}
	})
}

func (w *World) onRemove(_ scene.NodeID, payload any) {
	if c, ok := payload.(*Character); ok {
		if w.characters[c.id] == c {
			delete(w.characters, c.id)
		}
	}
}

func (w *World) playSound(effect SoundEffect, at scene.Vec2) {
	w.Push(scene.Command{Category: CategorySoundEffect, Action: cmdPlaySound, Value: int32(effect), Vec: at})
}

// Update 推进一帧：
// 重置速度并施加重力，分发命令，导弹制导，碰撞结算，
// 移除残骸，常规更新，最后处理平台支撑
func (w *World) Update(dt time.Duration) {
	for _, c := range w.characters {
		if c.Destroyed() {
			continue
		}
		c.velocity = scene.Vec2{}
		if !c.grounded {
			c.velocity.Y += w.cfg.Gravity
		}
		if c.jumpLeft > 0 {
			c.velocity.Y -= JumpSpeed
			c.jumpLeft -= dt
		}
	}

	w.Push(scene.Command{Category: CategoryProjectile, Action: cmdRemoveOffscreen})
	for {
		cmd, ok := w.commands.Pop()
		if !ok {
			break
		}
		w.graph.Dispatch(cmd, w.handlers, dt)
	}

	w.guideMissiles(dt)
	w.handleCollisions()
	w.graph.RemoveWrecks(w.onRemove)

	w.graph.Update(func(id scene.NodeID) {
		if u, ok := w.graph.Payload(id).(Updatable); ok {
			u.Update(w, dt)
		}
	})

	w.handlePlatforms()
}

func (w *World) guideMissiles(dt time.Duration) {
	targets := make([]*Character, 0, len(w.characters))
	for _, c := range w.Characters() {
		if !c.Destroyed() {
			targets = append(targets, c)
		}
	}
	w.graph.Walk(func(id scene.NodeID) {
		p, ok := w.graph.Payload(id).(*Projectile)
		if !ok || !p.Guided() || p.Destroyed() {
			return
		}
		var closest *Character
		best := 0.0
		at := p.Position()
		for _, c := range targets {
			if c.id == p.owner {
				continue
			}
			d := at.Dist(c.Position())
			if closest == nil || d < best {
				closest, best = c, d
			}
		}
		if closest != nil {
			p.GuideTowards(closest.Position(), dt)
		}
	})
}
