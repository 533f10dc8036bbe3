package server

import (
	"context"
	"math/rand/v2"
	"time"

	"skybrawl/protocol"
	"skybrawl/world"
)

// run 工作协程主循环：网络服务每轮执行，定时广播由时间累加器驱动
func (s *Server) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.LoopSleep)
	defer ticker.Stop()

	interval := s.cfg.TickInterval()
	last := s.now()
	var acc time.Duration

	for {
		// 核心循环：处理请求 → 收包 → 接入 → 回收 → 定时广播
		s.drainControl()
		s.receiveAll()
		s.acceptPending()
		s.handleDisconnections()

		now := s.now()
		acc += now.Sub(last)
		last = now
		for acc >= interval {
			start := time.Now()
			s.tick()
			s.metrics.AddTick(time.Since(start).Nanoseconds())
			acc -= interval
		}
		s.spawnPickups(now)

		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case <-ticker.C:
		}
	}
}

// tick 广播完整快照，清理已阵亡角色，检查是否只剩一名玩家
func (s *Server) tick() {
	snap := protocol.UpdateClientState{Characters: s.snapshot()}
	s.sendToAll(snap)
	s.broadcastSpectators(snap)

	for id, c := range s.characters {
		if c.Hitpoints <= 0 {
			delete(s.characters, id)
		}
	}
	s.metrics.SetCharacters(len(s.characters))
	s.checkLastOneStanding()
}

// checkLastOneStanding 至少两名玩家在线且只剩一名玩家仍有存活角色时，每局广播一次胜利
func (s *Server) checkLastOneStanding() {
	if s.roundOver || s.readyPeers() < 2 {
		return
	}
	var winner *peer
	alive := 0
	for _, p := range s.peers {
		if !p.ready {
			continue
		}
		for _, id := range p.characters {
			if _, ok := s.characters[id]; ok {
				winner = p
				alive++
				break
			}
		}
	}
	if alive != 1 {
		return
	}
	s.roundOver = true
	s.sendToAll(protocol.MissionSuccess{})
	s.log.Infow("last one standing", "session", winner.session, "characters", winner.characters)
}

// spawnPickups 每隔 PickupInterval 在随机位置投放一个道具
func (s *Server) spawnPickups(now time.Time) {
	if s.cfg.PickupInterval <= 0 || s.readyPeers() == 0 {
		s.lastPickup = now
		return
	}
	if now.Sub(s.lastPickup) < s.cfg.PickupInterval {
		return
	}
	s.lastPickup = now
	margin := s.cfg.WorldWidth / 10
	m := protocol.SpawnPickup{
		Type: int32(rand.IntN(int(world.PickupKindCount))),
		X:    float32(margin + rand.Float64()*(s.cfg.WorldWidth-2*margin)),
		Y:    float32(s.cfg.WorldHeight / 10),
	}
	s.sendToAll(m)
	s.log.Debugw("pickup spawned", "type", m.Type, "x", m.X, "y", m.Y)
}

// shutdown 退出前关闭监听与全部连接
func (s *Server) shutdown() {
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
	s.listening = false
	for _, p := range s.peers {
		p.conn.Flush(100 * time.Millisecond)
		p.conn.Close()
	}
	s.peers = nil
	for sp := range s.spectators {
		sp.Close()
	}
	s.spectators = map[*Spectator]struct{}{}
	s.log.Infof("stopped after %s", humanDuration(s.now().Sub(s.started)))
}
