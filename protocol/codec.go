package protocol

import (
	"fmt"
)

// EncodeClient 将客户端消息编码为载荷（不含帧长度前缀）
func EncodeClient(m ClientMessage) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("trying to encode nil client message")
	}
	w := &writer{buf: make([]byte, 0, 64)}
	w.int32(int32(m.ClientKind()))
	switch v := m.(type) {
	case Quit, RequestCoopPartner:
	case PlayerEvent:
		w.int32(v.CharacterID)
		w.int32(v.Action)
	case PlayerRealtimeChange:
		w.int32(v.CharacterID)
		w.int32(v.Action)
		w.bool(v.Enabled)
	case PositionUpdate:
		if len(v.Characters) > MaxCharacters {
			return nil, ErrTooMany
		}
		w.characters(v.Characters)
	default:
		return nil, fmt.Errorf("encode client message %T: %w", m, ErrUnknownKind)
	}
	return w.buf, nil
}

// DecodeClient 解析客户端载荷；未知判别值返回 ErrUnknownKind
func DecodeClient(b []byte) (ClientMessage, error) {
	r := &reader{buf: b}
	kind := ClientKind(r.int32())
	if r.err != nil {
		return nil, r.err
	}
	var m ClientMessage
	switch kind {
	case ClientQuit:
		m = Quit{}
	case ClientRequestCoopPartner:
		m = RequestCoopPartner{}
	case ClientPlayerEvent:
		m = PlayerEvent{CharacterID: r.int32(), Action: r.int32()}
	case ClientPlayerRealtimeChange:
		m = PlayerRealtimeChange{CharacterID: r.int32(), Action: r.int32(), Enabled: r.bool()}
	case ClientPositionUpdate:
		m = PositionUpdate{Characters: r.characters()}
	default:
		return nil, fmt.Errorf("client kind %d: %w", kind, ErrUnknownKind)
	}
	if err := r.done(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return m, nil
}

// EncodeServer 将服务器消息编码为载荷（不含帧长度前缀）
func EncodeServer(m ServerMessage) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("trying to encode nil server message")
	}
	w := &writer{buf: make([]byte, 0, 64)}
	w.int32(int32(m.ServerKind()))
	switch v := m.(type) {
	case MissionSuccess:
	case BroadcastMessage:
		if len(v.Text) > MaxStringLen {
			return nil, ErrStringTooLong
		}
		w.string(v.Text)
	case SpawnSelf:
		w.int32(v.ID)
		w.float32(v.X)
		w.float32(v.Y)
	case PlayerConnect:
		w.int32(v.ID)
		w.float32(v.X)
		w.float32(v.Y)
	case AcceptCoopPartner:
		w.int32(v.ID)
		w.float32(v.X)
		w.float32(v.Y)
	case PlayerDisconnect:
		w.int32(v.ID)
	case PlayerEvent:
		w.int32(v.CharacterID)
		w.int32(v.Action)
	case PlayerRealtimeChange:
		w.int32(v.CharacterID)
		w.int32(v.Action)
		w.bool(v.Enabled)
	case SpawnPickup:
		w.int32(v.Type)
		w.float32(v.X)
		w.float32(v.Y)
	case InitialState:
		if len(v.Characters) > MaxCharacters {
			return nil, ErrTooMany
		}
		w.characters(v.Characters)
	case UpdateClientState:
		if len(v.Characters) > MaxCharacters {
			return nil, ErrTooMany
		}
		w.characters(v.Characters)
	default:
		return nil, fmt.Errorf("encode server message %T: %w", m, ErrUnknownKind)
	}
	return w.buf, nil
}

// DecodeServer 解析服务器载荷；未知判别值返回 ErrUnknownKind
func DecodeServer(b []byte) (ServerMessage, error) {
	r := &reader{buf: b}
	kind := ServerKind(r.int32())
	if r.err != nil {
		return nil, r.err
	}
	var m ServerMessage
	switch kind {
	case ServerMissionSuccess:
		m = MissionSuccess{}
	case ServerBroadcastMessage:
		m = BroadcastMessage{Text: r.string()}
	case ServerSpawnSelf:
		m = SpawnSelf{ID: r.int32(), X: r.float32(), Y: r.float32()}
	case ServerPlayerConnect:
		m = PlayerConnect{ID: r.int32(), X: r.float32(), Y: r.float32()}
	case ServerAcceptCoopPartner:
		m = AcceptCoopPartner{ID: r.int32(), X: r.float32(), Y: r.float32()}
	case ServerPlayerDisconnect:
		m = PlayerDisconnect{ID: r.int32()}
	case ServerPlayerEvent:
		m = PlayerEvent{CharacterID: r.int32(), Action: r.int32()}
	case ServerPlayerRealtimeChange:
		m = PlayerRealtimeChange{CharacterID: r.int32(), Action: r.int32(), Enabled: r.bool()}
	case ServerSpawnPickup:
		m = SpawnPickup{Type: r.int32(), X: r.float32(), Y: r.float32()}
	case ServerInitialState:
		m = InitialState{Characters: r.characters()}
	case ServerUpdateClientState:
		m = UpdateClientState{Characters: r.characters()}
	default:
		return nil, fmt.Errorf("server kind %d: %w", kind, ErrUnknownKind)
	}
	if err := r.done(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return m, nil
}
