package world

import "skybrawl/scene"

// 场景节点类别，用于碰撞过滤与命令路由
const (
	CategoryNone        scene.Category = 0
	CategoryLayer       scene.Category = 1 << 0 // 实体挂接层，接收生成命令
	CategoryCharacter   scene.Category = 1 << 1
	CategoryPickup      scene.Category = 1 << 2
	CategoryPlatform    scene.Category = 1 << 3
	CategoryBullet      scene.Category = 1 << 4
	CategoryMissile     scene.Category = 1 << 5
	CategorySoundEffect scene.Category = 1 << 6

	CategoryProjectile = CategoryBullet | CategoryMissile
)

// Kind 实体种类
type Kind int

const (
	KindCharacter Kind = iota
	KindPickup
	KindPlatform
	KindProjectile
)

func (k Kind) String() string {
	switch k {
	case KindCharacter:
		return "character"
	case KindPickup:
		return "pickup"
	case KindPlatform:
		return "platform"
	case KindProjectile:
		return "projectile"
	default:
		return "unknown"
	}
}

// Action 玩家逻辑动作，网络上以 int32 传输
type Action int32

const (
	MoveLeft Action = iota
	MoveRight
	Fire
	Jump
	LaunchMissile
	ActionCount
)

// Realtime 持续动作（按住生效），其余为一次性事件
func (a Action) Realtime() bool {
	return a == MoveLeft || a == MoveRight || a == Fire
}

// Valid 是否为已知动作
func (a Action) Valid() bool {
	return a >= 0 && a < ActionCount
}

func (a Action) String() string {
	switch a {
	case MoveLeft:
		return "move-left"
	case MoveRight:
		return "move-right"
	case Fire:
		return "fire"
	case Jump:
		return "jump"
	case LaunchMissile:
		return "launch-missile"
	default:
		return "unknown"
	}
}

// SoundEffect 音效编号，由声音层解释
type SoundEffect int32

const (
	SoundGunfire SoundEffect = iota
	SoundLaunchMissile
	SoundExplosion1
	SoundExplosion2
	SoundCollectPickup
	SoundEffectCount
)

// PickupKind 道具类型
type PickupKind int32

const (
	HealthRefill PickupKind = iota
	MissileRefill
	FireRate
	PickupKindCount
)

// Valid 是否为已知道具类型
func (k PickupKind) Valid() bool {
	return k >= 0 && k < PickupKindCount
}

// ProjectileKind 投射物类型
type ProjectileKind int32

const (
	Bullet ProjectileKind = iota
	Missile
	ProjectileKindCount
)
