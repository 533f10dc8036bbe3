package server

import (
	"context"
	"net"

	"skybrawl/protocol"
	"skybrawl/transport"
)

// serve 为监听器启动接入协程，接入的连接交给工作协程处理
func (s *Server) serve(l net.Listener) {
	s.listener = l
	s.listening = true
	go acceptLoop(s.runCtx, l, s.incoming)
}

func acceptLoop(ctx context.Context, l net.Listener, out chan<- net.Conn) {
	for {
		nc, err := l.Accept()
		if err != nil {
			return
		}
		select {
		case out <- nc:
		case <-ctx.Done():
			_ = nc.Close()
			return
		}
	}
}

// setListening 按名额开关监听；未绑定端口时只记录状态
func (s *Server) setListening(on bool) {
	if on == s.listening {
		return
	}
	if !on {
		s.listening = false
		if s.listener != nil {
			_ = s.listener.Close()
			s.listener = nil
		}
		s.log.Infof("peer cap %d reached, listening paused", s.cfg.MaxPlayers)
		return
	}
	if s.boundAddr == "" {
		s.listening = true
		return
	}
	l, err := net.Listen("tcp", s.boundAddr)
	if err != nil {
		s.log.Warnw("resume listening failed", "addr", s.boundAddr, "err", err)
		return
	}
	s.serve(l)
	s.log.Infof("listening resumed on %s", s.boundAddr)
}

// acceptPending 每轮最多接入一个连接
func (s *Server) acceptPending() {
	var nc net.Conn
	select {
	case nc = <-s.incoming:
	default:
		return
	}
	if !s.listening || s.connected() >= s.cfg.MaxPlayers {
		// 超出名额：直接拒绝
		_ = nc.Close()
		s.metrics.IncRejected()
		return
	}
	s.accept(transport.New(nc))
}

func (s *Server) connected() int { return len(s.peers) }

// accept 新连接入场：分配角色，SpawnSelf → 通知其他人 → InitialState → 就绪
func (s *Server) accept(conn *transport.Conn) *peer {
	p := newPeer(conn, s.now())
	s.peers = append(s.peers, p)
	c := s.spawnCharacter(p)

	s.sendTo(p, protocol.SpawnSelf{ID: c.ID, X: c.X, Y: c.Y})
	s.sendToOthers(p, protocol.PlayerConnect{ID: c.ID, X: c.X, Y: c.Y})
	s.sendTo(p, protocol.InitialState{Characters: s.snapshot()})
	s.sendToOthers(p, protocol.BroadcastMessage{Text: MessageNewPlayer})
	p.ready = true
	s.roundOver = false

	s.metrics.IncAccepted()
	s.metrics.SetPeers(len(s.peers))
	s.log.Infow("peer connected", "session", p.session, "remote", conn.RemoteAddr(), "character", c.ID)

	if s.connected() >= s.cfg.MaxPlayers {
		s.setListening(false)
	}
	return p
}

// receiveAll 读空每个就绪连接的接收队列；超过超时时间没有任何数据则标记超时
func (s *Server) receiveAll() {
	now := s.now()
	for _, p := range s.peers {
		if !p.ready {
			continue
		}
		for {
			payload, ok := p.conn.Poll()
			if !ok {
				break
			}
			s.handlePacket(p, payload)
			p.lastPacket = now
		}
		if now.Sub(p.lastPacket) > s.cfg.ClientTimeout && !p.timedOut {
			p.timedOut = true
			s.metrics.IncTimedOut()
			s.log.Infow("peer timed out", "session", p.session, "idle", now.Sub(p.lastPacket))
		}
	}
}

// handleDisconnections 移除超时连接：通知剩余连接其角色离开，并在有空位时恢复监听
func (s *Server) handleDisconnections() {
	var gone []*peer
	kept := s.peers[:0]
	for _, p := range s.peers {
		if p.timedOut {
			gone = append(gone, p)
		} else {
			kept = append(kept, p)
		}
	}
	if len(gone) == 0 {
		return
	}
	for i := len(kept); i < len(s.peers); i++ {
		s.peers[i] = nil
	}
	s.peers = kept

	for _, p := range gone {
		p.ready = false
		for _, id := range p.characters {
			s.sendToAll(protocol.PlayerDisconnect{ID: id})
			delete(s.characters, id)
		}
		p.conn.Close()
		s.sendToAll(protocol.BroadcastMessage{Text: MessageAllyDisconnected})
		s.log.Infow("peer disconnected", "session", p.session, "characters", p.characters)
	}
	s.metrics.SetPeers(len(s.peers))
	s.metrics.SetCharacters(len(s.characters))

	if s.connected() < s.cfg.MaxPlayers {
		s.setListening(true)
	}
}
