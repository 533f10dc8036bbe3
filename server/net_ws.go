package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"skybrawl/protocol"
)

// Spectator 只读观战连接：每个 Tick 收到一帧二进制 UpdateClientState 载荷
type Spectator struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewSpectator(ws *websocket.Conn) *Spectator {
	return &Spectator{
		ws:   ws,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *Spectator) Enqueue(b []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- b:
		return true
	default:
		// 为了实时性，丢弃（防止阻塞 Tick）
		return false
	}
}

// Close 关闭底层连接并结束写协程（可重复调用）
func (c *Spectator) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *Spectator) writePump() {
	defer c.ws.Close()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				return
			}
		}
	}
}

// readPump 丢弃观战端发来的数据，只用于感知断开；退出时请求工作协程注销
func (c *Spectator) readPump(s *Server) {
	defer c.Close()
	defer s.submit(func() { s.removeSpectator(c) })
	c.ws.SetReadLimit(1024)
	_ = c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)) })

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) addSpectator(c *Spectator) {
	s.spectators[c] = struct{}{}
	s.log.Infow("spectator joined", "remote", c.ws.RemoteAddr().String(), "spectators", len(s.spectators))
}

func (s *Server) removeSpectator(c *Spectator) {
	if _, ok := s.spectators[c]; !ok {
		return
	}
	delete(s.spectators, c)
	c.Close()
	s.log.Infow("spectator left", "spectators", len(s.spectators))
}

// broadcastSpectators 向观战端推送快照；websocket 自带分帧，只发载荷
func (s *Server) broadcastSpectators(m protocol.UpdateClientState) {
	if len(s.spectators) == 0 {
		return
	}
	payload, err := protocol.EncodeServer(m)
	if err != nil {
		s.log.Warnw("encode spectator frame failed", "err", err)
		return
	}
	for c := range s.spectators {
		c.Enqueue(payload)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 观战端只读，允许所有来源
		return true
	},
}

// HandleSpectate WebSocket 观战接入：GET /ws/spectate
func (s *Server) HandleSpectate(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debugw("upgrade error", "err", err)
		return
	}
	c := NewSpectator(ws)
	if !s.submit(func() { s.addSpectator(c) }) {
		c.Close()
		return
	}
	go c.writePump()
	go c.readPump(s)
}
