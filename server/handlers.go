package server

import (
	"skybrawl/protocol"
)

// 公告文本
const (
	MessageNewPlayer        = "New player!"
	MessageAllyDisconnected = "An ally has disconnected."
)

// handlePacket 解释一条客户端消息；无法解析的消息直接丢弃，不回应也不断开
func (s *Server) handlePacket(p *peer, payload []byte) {
	msg, err := protocol.DecodeClient(payload)
	if err != nil {
		s.metrics.IncDropped()
		s.log.Debugw("dropped packet", "session", p.session, "err", err)
		return
	}
	s.metrics.IncReceived()

	switch m := msg.(type) {
	case protocol.Quit:
		p.timedOut = true
		s.log.Infow("peer quit", "session", p.session)

	case protocol.PlayerEvent:
		s.sendToOthers(p, m)

	case protocol.PlayerRealtimeChange:
		s.sendToOthers(p, m)

	case protocol.RequestCoopPartner:
		s.addCoopPartner(p)

	case protocol.PositionUpdate:
		for _, c := range m.Characters {
			// 只合并已知角色，未知标识忽略
			if _, ok := s.characters[c.ID]; ok {
				s.characters[c.ID] = c
			}
		}
	}
}

// addCoopPartner 为同一连接再分配一名角色
func (s *Server) addCoopPartner(p *peer) {
	c := s.spawnCharacter(p)
	s.sendTo(p, protocol.AcceptCoopPartner{ID: c.ID, X: c.X, Y: c.Y})
	s.sendToOthers(p, protocol.PlayerConnect{ID: c.ID, X: c.X, Y: c.Y})
	s.log.Infow("co-op partner added", "session", p.session, "character", c.ID)
}
