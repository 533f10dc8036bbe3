package client

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"skybrawl/config"
	"skybrawl/logging"
	"skybrawl/protocol"
	"skybrawl/scene"
	"skybrawl/transport"
	"skybrawl/world"
)

// State 会话状态
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnected // 连接中断（服务器超时）
	StateFailed       // 未能建立连接
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Step Update 的返回值，告诉调用方是否继续这一局
type Step int

const (
	Running Step = iota
	Abandon      // 回到菜单
)

// Outcome 对局结果
type Outcome int

const (
	OutcomeNone    Outcome = iota
	OutcomeSuccess         // 服务器宣布只剩我方存活
	OutcomeFailure         // 本地角色全部阵亡
)

// Session 客户端同步会话：本地世界模拟 + 与服务器的对账。
// 单协程使用，所有工作都在 Update 内同步完成
type Session struct {
	cfg config.Client
	log *zap.SugaredLogger

	conn  *transport.Conn
	err   error
	state State
	world *world.World

	players map[int32]*Player
	local   []int32 // 本地权威角色，按分配顺序
	started bool
	outcome Outcome

	clock           time.Time // 由帧时间推进的逻辑时钟
	sinceLastPacket time.Duration
	failedFor       time.Duration
	sender          *rate.Limiter

	broadcasts   []string
	broadcastAge time.Duration
}

// Connect 在 ConnectTimeout 内连接服务器；失败时返回处于 StateFailed 的会话，原因见 Err
func Connect(ctx context.Context, cfg config.Client, audio world.AudioSink) *Session {
	log := logging.Named("client")
	log.Infof("connecting to %s", cfg.Addr)
	conn, err := transport.Dial(ctx, cfg.Addr, cfg.ConnectTimeout)
	if err != nil {
		log.Warnw("connect failed", "addr", cfg.Addr, "err", err)
		s := NewSession(nil, cfg, audio)
		s.err = err
		return s
	}
	return NewSession(conn, cfg, audio)
}

// NewSession 用已建立的连接创建会话；conn 为 nil 表示连接失败
func NewSession(conn *transport.Conn, cfg config.Client, audio world.AudioSink) *Session {
	if cfg.SendHz <= 0 {
		cfg.SendHz = 20
	}
	s := &Session{
		cfg:     cfg,
		log:     logging.Named("client"),
		conn:    conn,
		state:   StateConnecting,
		players: make(map[int32]*Player),
		clock:   time.Now(),
		sender:  rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.SendHz)), 1),
	}
	if conn == nil {
		s.state = StateFailed
		return s
	}
	s.world = world.New(cfg.World, audio)
	s.state = StateConnected
	s.log.Infow("connected", "remote", conn.RemoteAddr())
	return s
}

func (s *Session) State() State { return s.state }

// Err 连接失败的原因
func (s *Session) Err() error { return s.err }

// World 本地世界；连接失败时为 nil
func (s *Session) World() *world.World { return s.world }

func (s *Session) Outcome() Outcome { return s.outcome }

// LocalIDs 本地权威角色标识
func (s *Session) LocalIDs() []int32 { return append([]int32(nil), s.local...) }

// IsLocal 角色是否由本进程权威控制
func (s *Session) IsLocal(id int32) bool {
	p, ok := s.players[id]
	return ok && p.local
}

// Broadcast 当前显示的公告，没有则为空串
func (s *Session) Broadcast() string {
	if len(s.broadcasts) == 0 {
		return ""
	}
	return s.broadcasts[0]
}

// Broadcasts 等待显示的全部公告（先进先出）
func (s *Session) Broadcasts() []string { return append([]string(nil), s.broadcasts...) }

// Update 推进一帧。连接中断或失败后经过 FailureGrace 返回 Abandon
func (s *Session) Update(dt time.Duration) Step {
	s.clock = s.clock.Add(dt)
	if s.state != StateConnected {
		s.failedFor += dt
		if s.failedFor >= s.cfg.FailureGrace {
			return Abandon
		}
		return Running
	}

	s.world.Update(dt)
	s.pruneDead()

	// 本地键盘与网络转发的持续动作
	for _, p := range s.players {
		p.apply(s.world)
	}

	if payload, ok := s.conn.Poll(); ok {
		s.sinceLastPacket = 0
		s.handlePacket(payload)
	} else if s.sinceLastPacket > s.cfg.ServerTimeout {
		s.disconnect()
		return Running
	}

	s.updateBroadcasts(dt)
	s.sendPositions()
	s.sinceLastPacket += dt
	return Running
}

// Press 本地玩家按下动作键；index 为本地角色序号（0 为主角色，1 为合作伙伴）
func (s *Session) Press(index int, a world.Action) {
	p := s.localPlayer(index)
	if p == nil || !a.Valid() {
		return
	}
	if a.Realtime() {
		if p.setHeld(a, true) {
			s.send(protocol.PlayerRealtimeChange{CharacterID: p.id, Action: int32(a), Enabled: true})
		}
		return
	}
	s.world.Act(p.id, a)
	s.send(protocol.PlayerEvent{CharacterID: p.id, Action: int32(a)})
}

// Release 本地玩家松开持续动作键
func (s *Session) Release(index int, a world.Action) {
	p := s.localPlayer(index)
	if p == nil {
		return
	}
	if p.setHeld(a, false) {
		s.send(protocol.PlayerRealtimeChange{CharacterID: p.id, Action: int32(a), Enabled: false})
	}
}

// ReleaseAll 失去焦点或暂停时松开所有本地动作
func (s *Session) ReleaseAll() {
	for _, id := range s.local {
		for _, a := range s.players[id].releaseAll() {
			s.send(protocol.PlayerRealtimeChange{CharacterID: id, Action: int32(a), Enabled: false})
		}
	}
}

// RequestCoopPartner 请求第二名本地角色
func (s *Session) RequestCoopPartner() {
	if len(s.local) >= 2 {
		return
	}
	s.send(protocol.RequestCoopPartner{})
}

// Close 通知服务器退出并关闭连接
func (s *Session) Close() {
	if s.conn == nil {
		return
	}
	if s.state == StateConnected {
		s.send(protocol.Quit{})
		s.conn.Flush(200 * time.Millisecond)
	}
	s.conn.Close()
	s.state = StateDisconnected
}

func (s *Session) localPlayer(index int) *Player {
	if s.state != StateConnected || index < 0 || index >= len(s.local) {
		return nil
	}
	return s.players[s.local[index]]
}

func (s *Session) disconnect() {
	s.state = StateDisconnected
	s.failedFor = 0
	s.conn.Close()
	s.log.Warnf("lost connection to server (nothing received for %s)", s.sinceLastPacket)
}

func (s *Session) send(m protocol.ClientMessage) {
	if s.conn == nil {
		return
	}
	frame, err := protocol.ClientFrame(m)
	if err != nil {
		s.log.Warnw("encode failed", "kind", m.ClientKind(), "err", err)
		return
	}
	if !s.conn.Enqueue(frame) {
		s.log.Debugw("send dropped", "kind", m.ClientKind())
	}
}

// sendPositions 按 SendHz 上报全部本地角色的完整状态
func (s *Session) sendPositions() {
	if !s.sender.AllowN(s.clock, 1) {
		return
	}
	m := protocol.PositionUpdate{Characters: make([]protocol.CharacterState, 0, len(s.local))}
	for _, id := range s.local {
		if c, ok := s.world.Character(id); ok {
			m.Characters = append(m.Characters, stateOf(c))
		}
	}
	s.send(m)
}

func stateOf(c *world.Character) protocol.CharacterState {
	pos := c.Position()
	return protocol.CharacterState{
		ID:        c.ID(),
		X:         float32(pos.X),
		Y:         float32(pos.Y),
		Hitpoints: int32(c.Hitpoints()),
		Ammo:      int32(c.Ammo()),
		Knockback: float32(c.Knockback()),
	}
}

// pruneDead 移除世界中已不存在的角色的代理；本地角色全部阵亡即失败
func (s *Session) pruneDead() {
	for id := range s.players {
		if _, ok := s.world.Character(id); !ok {
			s.dropPlayer(id)
		}
	}
	if s.started && len(s.local) == 0 && s.outcome == OutcomeNone {
		s.outcome = OutcomeFailure
		s.log.Info("all local characters lost")
	}
}

func (s *Session) dropPlayer(id int32) {
	delete(s.players, id)
	for i, l := range s.local {
		if l == id {
			s.local = append(s.local[:i], s.local[i+1:]...)
			break
		}
	}
}

func (s *Session) updateBroadcasts(dt time.Duration) {
	if len(s.broadcasts) == 0 {
		return
	}
	s.broadcastAge += dt
	if s.broadcastAge > s.cfg.BroadcastShow {
		s.broadcasts = s.broadcasts[1:]
		s.broadcastAge = 0
	}
}

func at(x, y float32) scene.Vec2 {
	return scene.Vec2{X: float64(x), Y: float64(y)}
}
