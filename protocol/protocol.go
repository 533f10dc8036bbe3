package protocol

// ClientKind 客户端 → 服务器的消息类型判别值
type ClientKind int32

const (
	ClientPlayerEvent ClientKind = iota
	ClientPlayerRealtimeChange
	ClientRequestCoopPartner
	ClientPositionUpdate
	ClientQuit
)

// ServerKind 服务器 → 客户端的消息类型判别值
type ServerKind int32

const (
	ServerBroadcastMessage ServerKind = iota
	ServerSpawnSelf
	ServerInitialState
	ServerPlayerEvent
	ServerPlayerRealtimeChange
	ServerPlayerConnect
	ServerPlayerDisconnect
	ServerAcceptCoopPartner
	ServerSpawnPickup
	ServerUpdateClientState
	ServerMissionSuccess
)

// 线上格式限制
const (
	MaxFrameSize  = 64 << 10 // 单帧载荷上限
	MaxStringLen  = 4096     // 字符串最大字节数
	MaxCharacters = 1024     // 单条消息中角色状态条数上限
)

func (k ClientKind) String() string {
	switch k {
	case ClientPlayerEvent:
		return "PlayerEvent"
	case ClientPlayerRealtimeChange:
		return "PlayerRealtimeChange"
	case ClientRequestCoopPartner:
		return "RequestCoopPartner"
	case ClientPositionUpdate:
		return "PositionUpdate"
	case ClientQuit:
		return "Quit"
	}
	return "Unknown"
}

func (k ServerKind) String() string {
	switch k {
	case ServerBroadcastMessage:
		return "BroadcastMessage"
	case ServerSpawnSelf:
		return "SpawnSelf"
	case ServerInitialState:
		return "InitialState"
	case ServerPlayerEvent:
		return "PlayerEvent"
	case ServerPlayerRealtimeChange:
		return "PlayerRealtimeChange"
	case ServerPlayerConnect:
		return "PlayerConnect"
	case ServerPlayerDisconnect:
		return "PlayerDisconnect"
	case ServerAcceptCoopPartner:
		return "AcceptCoopPartner"
	case ServerSpawnPickup:
		return "SpawnPickup"
	case ServerUpdateClientState:
		return "UpdateClientState"
	case ServerMissionSuccess:
		return "MissionSuccess"
	}
	return "Unknown"
}
