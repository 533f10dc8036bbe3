package server

import (
	"time"

	"github.com/google/uuid"

	"skybrawl/transport"
)

// peer 一条客户端连接及其会话状态，只在工作协程中读写
type peer struct {
	conn    *transport.Conn
	session uuid.UUID

	ready      bool
	timedOut   bool
	joined     time.Time
	lastPacket time.Time

	characters []int32 // 该连接控制的角色，合作模式下可能不止一个
}

func newPeer(conn *transport.Conn, now time.Time) *peer {
	return &peer{
		conn:       conn,
		session:    uuid.New(),
		joined:     now,
		lastPacket: now, // 防止刚接入就超时
	}
}

// send 入队一帧；队列满或连接已关闭时静默丢弃
func (p *peer) send(frame []byte) bool {
	return p.conn.Enqueue(frame)
}

func (p *peer) owns(id int32) bool {
	for _, c := range p.characters {
		if c == id {
			return true
		}
	}
	return false
}

// PeerStatus 对外展示的连接状态
type PeerStatus struct {
	Session    string  `json:"session"`
	Remote     string  `json:"remote"`
	Ready      bool    `json:"ready"`
	Characters []int32 `json:"characters"`
	Connected  string  `json:"connected"`
	Idle       string  `json:"idle"`
}
