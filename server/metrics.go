package server

import (
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

// humanDuration 取最高两级单位，例如 "3m 12s"
func humanDuration(d time.Duration) string {
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

// Metrics 记录服务器运行期的关键指标（用于监控与调试）
type Metrics struct {
	TickCount       int64 // 广播 Tick 次数
	TotalTickNs     int64 // Tick 累计耗时（纳秒）
	PacketsReceived int64 // 成功解析的客户端消息
	PacketsDropped  int64 // 无法解析而丢弃的消息
	PeersAccepted   int64
	PeersRejected   int64 // 超出名额被拒绝的连接
	PeersTimedOut   int64
	BytesSent       int64
	SendDropped     int64 // 因发送队列满被丢弃的帧
	Peers           int64 // 当前连接数
	Characters      int64 // 当前角色数

	started atomic.Int64 // unix 纳秒
}

// NewMetrics 创建指标，起始时间为当前时刻
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.Start(time.Now())
	return m
}

func (m *Metrics) Start(t time.Time) { m.started.Store(t.UnixNano()) }

func (m *Metrics) IncReceived()    { atomic.AddInt64(&m.PacketsReceived, 1) }
func (m *Metrics) IncDropped()     { atomic.AddInt64(&m.PacketsDropped, 1) }
func (m *Metrics) IncAccepted()    { atomic.AddInt64(&m.PeersAccepted, 1) }
func (m *Metrics) IncRejected()    { atomic.AddInt64(&m.PeersRejected, 1) }
func (m *Metrics) IncTimedOut()    { atomic.AddInt64(&m.PeersTimedOut, 1) }
func (m *Metrics) IncSendDropped() { atomic.AddInt64(&m.SendDropped, 1) }
func (m *Metrics) AddSent(n int)   { atomic.AddInt64(&m.BytesSent, int64(n)) }
func (m *Metrics) SetPeers(n int)  { atomic.StoreInt64(&m.Peers, int64(n)) }
func (m *Metrics) SetCharacters(n int) {
	atomic.StoreInt64(&m.Characters, int64(n))
}
func (m *Metrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Uptime 自启动以来的时长
func (m *Metrics) Uptime() time.Duration {
	return time.Since(time.Unix(0, m.started.Load()))
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *Metrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	sent := atomic.LoadInt64(&m.BytesSent)
	return map[string]any{
		"tick_count":       tick,
		"avg_tick_ms":      avgMs,
		"packets_received": atomic.LoadInt64(&m.PacketsReceived),
		"packets_dropped":  atomic.LoadInt64(&m.PacketsDropped),
		"peers_accepted":   atomic.LoadInt64(&m.PeersAccepted),
		"peers_rejected":   atomic.LoadInt64(&m.PeersRejected),
		"peers_timed_out":  atomic.LoadInt64(&m.PeersTimedOut),
		"send_dropped":     atomic.LoadInt64(&m.SendDropped),
		"peers":            atomic.LoadInt64(&m.Peers),
		"characters":       atomic.LoadInt64(&m.Characters),
		"bytes_sent":       sent,
		"bytes_sent_human": humanize.Bytes(uint64(sent)),
		"uptime":           humanDuration(m.Uptime()),
	}
}
