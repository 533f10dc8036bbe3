package server

import (
	"context"
	"errors"
	"net"
	"sort"
	"time"

	"go.uber.org/zap"

	"skybrawl/config"
	"skybrawl/logging"
	"skybrawl/protocol"
	"skybrawl/world"
)

// ErrStopped 服务器未运行或已停止
var ErrStopped = errors.New("server stopped")

// Server 权威服务器：单个工作协程负责接入、收包、超时回收与定时广播。
// 连接表与角色表只在工作协程中修改，其他协程通过 control 通道提交请求
type Server struct {
	cfg config.Server
	log *zap.SugaredLogger
	now func() time.Time

	// 监听：达到人数上限时关闭，空出名额后重新打开
	boundAddr string
	listener  net.Listener
	listening bool
	incoming  chan net.Conn

	peers      []*peer
	characters map[int32]protocol.CharacterState
	nextID     int32
	roundOver  bool

	spectators map[*Spectator]struct{}
	control    chan func()
	metrics    *Metrics

	started    time.Time
	lastPickup time.Time

	runCtx context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New 创建服务器；调用 Start 之前不占用任何网络资源
func New(cfg config.Server) *Server {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 1
	}
	if cfg.LoopSleep <= 0 {
		cfg.LoopSleep = 20 * time.Millisecond
	}
	return &Server{
		cfg:        cfg,
		log:        logging.Named("server"),
		now:        time.Now,
		listening:  true,
		incoming:   make(chan net.Conn, 16),
		characters: make(map[int32]protocol.CharacterState),
		nextID:     1,
		spectators: make(map[*Spectator]struct{}),
		control:    make(chan func(), 64),
		metrics:    NewMetrics(),
		runCtx:     context.Background(),
		done:       make(chan struct{}),
	}
}

// Config 服务器配置（启动后只读）
func (s *Server) Config() config.Server { return s.cfg }

// Metrics 运行指标
func (s *Server) Metrics() *Metrics { return s.metrics }

// Addr 实际监听地址；Start 之前为空
func (s *Server) Addr() string { return s.boundAddr }

// Start 绑定监听端口并启动工作协程；ctx 取消或调用 Stop 时退出
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.boundAddr = l.Addr().String()
	ctx, s.cancel = context.WithCancel(ctx)
	s.runCtx = ctx
	s.started = s.now()
	s.lastPickup = s.started
	s.metrics.Start(s.started)
	s.serve(l)
	s.log.Infof("listening on %s (max players %d, tick %s, timeout %s)",
		s.boundAddr, s.cfg.MaxPlayers, s.cfg.TickInterval(), s.cfg.ClientTimeout)

	go s.run(ctx)
	return nil
}

// Stop 请求退出并等待工作协程结束
func (s *Server) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// Done 工作协程退出后关闭
func (s *Server) Done() <-chan struct{} { return s.done }

// submit 向工作协程提交一个闭包（非阻塞，队列满返回 false）
func (s *Server) submit(fn func()) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.control <- fn:
		return true
	default:
		return false
	}
}

// drainControl 执行其他协程提交的请求
func (s *Server) drainControl() {
	for {
		select {
		case fn := <-s.control:
			fn()
		default:
			return
		}
	}
}

// Status 服务器状态快照
type Status struct {
	Addr       string                    `json:"addr"`
	Listening  bool                      `json:"listening"`
	Uptime     string                    `json:"uptime"`
	NextID     int32                     `json:"nextId"`
	Spectators int                       `json:"spectators"`
	Peers      []PeerStatus              `json:"peers"`
	Characters []protocol.CharacterState `json:"characters"`
}

// Status 通过工作协程获取状态快照
func (s *Server) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if !s.submit(func() { reply <- s.status() }) {
		return Status{}, ErrStopped
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	case <-s.done:
		return Status{}, ErrStopped
	}
}

// Announce 向所有客户端广播一条文本公告
func (s *Server) Announce(text string) error {
	if len(text) > protocol.MaxStringLen {
		return protocol.ErrStringTooLong
	}
	if !s.submit(func() {
		s.sendToAll(protocol.BroadcastMessage{Text: text})
		s.log.Infof("announce: %q", text)
	}) {
		return ErrStopped
	}
	return nil
}

func (s *Server) status() Status {
	now := s.now()
	st := Status{
		Addr:       s.boundAddr,
		Listening:  s.listening,
		Uptime:     humanDuration(now.Sub(s.started)),
		NextID:     s.nextID,
		Spectators: len(s.spectators),
		Characters: s.snapshot(),
	}
	for _, p := range s.peers {
		st.Peers = append(st.Peers, PeerStatus{
			Session:    p.session.String(),
			Remote:     p.conn.RemoteAddr(),
			Ready:      p.ready,
			Characters: append([]int32(nil), p.characters...),
			Connected:  humanDuration(now.Sub(p.joined)),
			Idle:       now.Sub(p.lastPacket).Round(time.Millisecond).String(),
		})
	}
	return st
}

// snapshot 按标识升序的全部角色状态
func (s *Server) snapshot() []protocol.CharacterState {
	out := make([]protocol.CharacterState, 0, len(s.characters))
	for _, c := range s.characters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// allocateID 标识单调递增，进程内永不复用
func (s *Server) allocateID() int32 {
	id := s.nextID
	s.nextID++
	return id
}

// spawnCharacter 在出生点创建一名新角色
func (s *Server) spawnCharacter(owner *peer) protocol.CharacterState {
	c := protocol.CharacterState{
		ID:        s.allocateID(),
		X:         float32(s.cfg.Spawn.X),
		Y:         float32(s.cfg.Spawn.Y),
		Hitpoints: world.StartHitpoints,
		Ammo:      world.StartAmmo,
		Knockback: world.BaseKnockback,
	}
	s.characters[c.ID] = c
	owner.characters = append(owner.characters, c.ID)
	s.metrics.SetCharacters(len(s.characters))
	return c
}

func (s *Server) readyPeers() int {
	n := 0
	for _, p := range s.peers {
		if p.ready {
			n++
		}
	}
	return n
}

// encode 编码一次，供多个接收方共享同一帧
func (s *Server) encode(m protocol.ServerMessage) []byte {
	frame, err := protocol.ServerFrame(m)
	if err != nil {
		s.log.Warnw("encode failed", "kind", m.ServerKind(), "err", err)
		return nil
	}
	return frame
}

func (s *Server) deliver(p *peer, frame []byte) {
	if p.send(frame) {
		s.metrics.AddSent(len(frame))
	} else {
		s.metrics.IncSendDropped()
	}
}

// sendTo 发给单个连接
func (s *Server) sendTo(p *peer, m protocol.ServerMessage) {
	if frame := s.encode(m); frame != nil {
		s.deliver(p, frame)
	}
}

// sendToAll 发给所有就绪连接；单个连接失败不影响其他连接
func (s *Server) sendToAll(m protocol.ServerMessage) {
	s.sendToOthers(nil, m)
}

// sendToOthers 发给除 except 之外的所有就绪连接
func (s *Server) sendToOthers(except *peer, m protocol.ServerMessage) {
	frame := s.encode(m)
	if frame == nil {
		return
	}
	for _, p := range s.peers {
		if p.ready && p != except {
			s.deliver(p, frame)
		}
	}
}
