package world

import (
	"time"

	"skybrawl/config"
	"skybrawl/scene"
)

// BaseKnockback 击退系数基线，重生时恢复
const BaseKnockback = 40

// 新角色的初始生命值与导弹数
const (
	StartHitpoints = 3
	StartAmmo      = 2
)

// 击退系数增量
const (
	CollisionKnockbackStep = 5
	BulletKnockbackStep    = 5
	MissileKnockbackStep   = 20
)

// 动作参数
const (
	JumpSpeed       = 600
	JumpDuration    = 350 * time.Millisecond
	ExplosionTime   = time.Second
	MaxFireRate     = 10
	MissileApproach = 200 // 导弹转向速率
	OffscreenMargin = 100
)

type characterData struct {
	hitpoints    int
	ammo         int
	speed        float64
	fireInterval time.Duration
	size         scene.Vec2
}

var characterTable = characterData{
	hitpoints:    StartHitpoints,
	ammo:         StartAmmo,
	speed:        400,
	fireInterval: time.Second,
	size:         scene.Vec2{X: 48, Y: 64},
}

type projectileData struct {
	speed    float64
	size     scene.Vec2
	category scene.Category
	sound    SoundEffect
}

var projectileTable = [ProjectileKindCount]projectileData{
	Bullet:  {speed: 600, size: scene.Vec2{X: 14, Y: 3}, category: CategoryBullet, sound: SoundGunfire},
	Missile: {speed: 150, size: scene.Vec2{X: 32, Y: 15}, category: CategoryMissile, sound: SoundLaunchMissile},
}

type pickupData struct {
	size  scene.Vec2
	apply func(c *Character)
}

var pickupTable = [PickupKindCount]pickupData{
	HealthRefill:  {size: scene.Vec2{X: 40, Y: 40}, apply: func(c *Character) { c.Repair(1) }},
	MissileRefill: {size: scene.Vec2{X: 40, Y: 40}, apply: func(c *Character) { c.CollectMissiles(1) }},
	FireRate:      {size: scene.Vec2{X: 40, Y: 40}, apply: func(c *Character) { c.IncreaseFireRate() }},
}

// 平台尺寸与落点偏移：角色/道具中心停在 平台Y - 偏移，与平台保持少量重叠
type platformData struct {
	size            scene.Vec2
	characterOffset float64
	pickupOffset    float64
}

var platformTable = map[config.PlatformKind]platformData{
	config.SmallPlatform: {size: scene.Vec2{X: 200, Y: 44}, characterOffset: 50, pickupOffset: 40},
	config.LargePlatform: {size: scene.Vec2{X: 400, Y: 60}, characterOffset: 58, pickupOffset: 48},
}
