package client

import (
	"skybrawl/protocol"
	"skybrawl/world"
)

// handlePacket 解释一条服务器消息；无法解析的消息丢弃
func (s *Session) handlePacket(payload []byte) {
	msg, err := protocol.DecodeServer(payload)
	if err != nil {
		s.log.Debugw("dropped packet", "err", err)
		return
	}

	switch m := msg.(type) {
	case protocol.BroadcastMessage:
		s.broadcasts = append(s.broadcasts, m.Text)
		if len(s.broadcasts) == 1 {
			s.broadcastAge = 0
		}

	case protocol.SpawnSelf:
		s.addLocal(m.ID, m.X, m.Y)

	case protocol.AcceptCoopPartner:
		s.addLocal(m.ID, m.X, m.Y)

	case protocol.PlayerConnect:
		s.addRemote(m.ID, m.X, m.Y)

	case protocol.PlayerDisconnect:
		s.world.RemoveCharacter(m.ID)
		s.dropPlayer(m.ID)

	case protocol.InitialState:
		for _, c := range m.Characters {
			s.addRemote(c.ID, c.X, c.Y)
		}
		s.applySnapshot(m.Characters)

	case protocol.UpdateClientState:
		s.applySnapshot(m.Characters)

	case protocol.PlayerEvent:
		// 本地角色的一次性动作已在按键时执行
		if p, ok := s.players[m.CharacterID]; ok && !p.local {
			s.world.Act(p.id, world.Action(m.Action))
		}

	case protocol.PlayerRealtimeChange:
		if p, ok := s.players[m.CharacterID]; ok && !p.local {
			p.setHeld(world.Action(m.Action), m.Enabled)
		}

	case protocol.SpawnPickup:
		s.world.CreatePickup(world.PickupKind(m.Type), at(m.X, m.Y))

	case protocol.MissionSuccess:
		s.outcome = OutcomeSuccess
		s.log.Info("mission success")
	}
}

// addLocal 创建本地权威角色
func (s *Session) addLocal(id int32, x, y float32) {
	s.world.AddCharacter(id, at(x, y))
	if p, ok := s.players[id]; ok && p.local {
		return
	}
	s.players[id] = newPlayer(id, true)
	s.local = append(s.local, id)
	s.started = true
	s.log.Infow("local character spawned", "id", id, "x", x, "y", y)
}

// addRemote 创建远端角色副本；已存在（包括本地角色）则不做改动
func (s *Session) addRemote(id int32, x, y float32) {
	if _, ok := s.players[id]; ok {
		return
	}
	s.world.AddCharacter(id, at(x, y))
	s.players[id] = newPlayer(id, false)
}

// applySnapshot 用服务器状态覆盖远端角色副本；本地权威角色永不覆盖
func (s *Session) applySnapshot(states []protocol.CharacterState) {
	for _, st := range states {
		if s.IsLocal(st.ID) {
			continue
		}
		c, ok := s.world.Character(st.ID)
		if !ok {
			continue
		}
		c.SetPosition(at(st.X, st.Y))
		c.SetHitpoints(int(st.Hitpoints))
		c.SetAmmo(int(st.Ammo))
		c.SetKnockback(float64(st.Knockback))
	}
}
