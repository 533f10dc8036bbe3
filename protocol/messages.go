package protocol

// ClientMessage 客户端发往服务器的消息
type ClientMessage interface {
	ClientKind() ClientKind
}

// ServerMessage 服务器发往客户端的消息
type ServerMessage interface {
	ServerKind() ServerKind
}

// CharacterState 一名角色的完整同步状态
type CharacterState struct {
	ID        int32   `json:"id"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Hitpoints int32   `json:"hitpoints"`
	Ammo      int32   `json:"ammo"`
	Knockback float32 `json:"knockback"`
}

// Quit 客户端主动退出（无载荷）
type Quit struct{}

// PlayerEvent 一次性动作（如发射导弹），双向共用
type PlayerEvent struct {
	CharacterID int32
	Action      int32
}

// PlayerRealtimeChange 持续动作的开关变化（如按住移动），双向共用
type PlayerRealtimeChange struct {
	CharacterID int32
	Action      int32
	Enabled     bool
}

// RequestCoopPartner 请求在同一连接上再控制一名角色
type RequestCoopPartner struct{}

// PositionUpdate 客户端上报本地权威角色的状态
type PositionUpdate struct {
	Characters []CharacterState
}

// SpawnSelf 通知新客户端生成自己的角色
type SpawnSelf struct {
	ID   int32
	X, Y float32
}

// PlayerConnect 通知其他客户端有新角色加入
type PlayerConnect struct {
	ID   int32
	X, Y float32
}

// PlayerDisconnect 通知角色离开
type PlayerDisconnect struct {
	ID int32
}

// AcceptCoopPartner 服务器为请求方分配的第二名角色
type AcceptCoopPartner struct {
	ID   int32
	X, Y float32
}

// InitialState 新连接建立时发送的世界快照
type InitialState struct {
	Characters []CharacterState
}

// UpdateClientState 每个 Tick 广播的完整快照
type UpdateClientState struct {
	Characters []CharacterState
}

// BroadcastMessage 文本公告
type BroadcastMessage struct {
	Text string
}

// SpawnPickup 服务器通知客户端生成道具
type SpawnPickup struct {
	Type int32
	X, Y float32
}

// MissionSuccess 只剩一名玩家存活
type MissionSuccess struct{}

func (Quit) ClientKind() ClientKind                 { return ClientQuit }
func (PlayerEvent) ClientKind() ClientKind          { return ClientPlayerEvent }
func (PlayerRealtimeChange) ClientKind() ClientKind { return ClientPlayerRealtimeChange }
func (RequestCoopPartner) ClientKind() ClientKind   { return ClientRequestCoopPartner }
func (PositionUpdate) ClientKind() ClientKind       { return ClientPositionUpdate }

func (BroadcastMessage) ServerKind() ServerKind     { return ServerBroadcastMessage }
func (SpawnSelf) ServerKind() ServerKind            { return ServerSpawnSelf }
func (InitialState) ServerKind() ServerKind         { return ServerInitialState }
func (PlayerEvent) ServerKind() ServerKind          { return ServerPlayerEvent }
func (PlayerRealtimeChange) ServerKind() ServerKind { return ServerPlayerRealtimeChange }
func (PlayerConnect) ServerKind() ServerKind        { return ServerPlayerConnect }
func (PlayerDisconnect) ServerKind() ServerKind     { return ServerPlayerDisconnect }
func (AcceptCoopPartner) ServerKind() ServerKind    { return ServerAcceptCoopPartner }
func (SpawnPickup) ServerKind() ServerKind          { return ServerSpawnPickup }
func (UpdateClientState) ServerKind() ServerKind    { return ServerUpdateClientState }
func (MissionSuccess) ServerKind() ServerKind       { return ServerMissionSuccess }
