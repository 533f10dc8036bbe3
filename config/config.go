package config

import (
	"time"
)

// ServerPort 默认监听端口
const ServerPort = 5000

// Vec 配置中使用的二维坐标
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PlatformKind 平台尺寸类型
type PlatformKind int

const (
	SmallPlatform PlatformKind = iota
	LargePlatform
)

// PlatformSpec 场景中一块平台的位置与尺寸类型
type PlatformSpec struct {
	Kind PlatformKind `json:"kind"`
	At   Vec          `json:"at"`
}

// World 世界模拟参数（客户端本地模拟使用）
type World struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Gravity float64 `json:"gravity"` // 未着地角色每帧叠加的竖直速度

	Respawn   Vec            `json:"respawn"`
	Platforms []PlatformSpec `json:"platforms"`
}

// DefaultWorld 返回标准战场：1024x768，一块大平台三块小平台
func DefaultWorld() World {
	return World{
		Width:   1024,
		Height:  768,
		Gravity: 250,
		Respawn: Vec{X: 500, Y: 100},
		Platforms: []PlatformSpec{
			{Kind: LargePlatform, At: Vec{X: 520, Y: 600}},
			{Kind: SmallPlatform, At: Vec{X: 200, Y: 450}},
			{Kind: SmallPlatform, At: Vec{X: 820, Y: 450}},
			{Kind: SmallPlatform, At: Vec{X: 510, Y: 320}},
		},
	}
}

// Server 权威服务器配置
type Server struct {
	Addr           string        `json:"addr"`
	AdminAddr      string        `json:"adminAddr"`
	MaxPlayers     int           `json:"maxPlayers"`
	TickHz         int           `json:"tickHz"`
	ClientTimeout  time.Duration `json:"clientTimeout"`
	LoopSleep      time.Duration `json:"loopSleep"`
	PickupInterval time.Duration `json:"pickupInterval"` // 0 表示不生成道具
	Spawn          Vec           `json:"spawn"`
	WorldWidth     float64       `json:"worldWidth"`
	WorldHeight    float64       `json:"worldHeight"`
}

// DefaultServer 返回默认服务器配置：10 人上限，20Hz 广播，3 秒超时
func DefaultServer() Server {
	w := DefaultWorld()
	return Server{
		Addr:           ":5000",
		AdminAddr:      ":8080",
		MaxPlayers:     10,
		TickHz:         20,
		ClientTimeout:  3 * time.Second,
		LoopSleep:      20 * time.Millisecond,
		PickupInterval: 5 * time.Second,
		Spawn:          Vec{X: w.Width / 2, Y: w.Height / 2},
		WorldWidth:     w.Width,
		WorldHeight:    w.Height,
	}
}

// TickInterval 根据 TickHz 计算广播间隔
func (s Server) TickInterval() time.Duration {
	if s.TickHz <= 0 {
		return 50 * time.Millisecond
	}
	return time.Second / time.Duration(s.TickHz)
}

// Client 客户端同步参数
type Client struct {
	Addr           string        `json:"addr"`
	ConnectTimeout time.Duration `json:"connectTimeout"`
	ServerTimeout  time.Duration `json:"serverTimeout"`
	FailureGrace   time.Duration `json:"failureGrace"`
	SendHz         int           `json:"sendHz"`
	BroadcastShow  time.Duration `json:"broadcastShow"`
	World          World         `json:"world"`
}

// DefaultClient 返回默认客户端配置：5 秒连接超时，2 秒服务器超时，5 秒回退
func DefaultClient() Client {
	return Client{
		Addr:           "127.0.0.1:5000",
		ConnectTimeout: 5 * time.Second,
		ServerTimeout:  2 * time.Second,
		FailureGrace:   5 * time.Second,
		SendHz:         20,
		BroadcastShow:  2500 * time.Millisecond,
		World:          DefaultWorld(),
	}
}
