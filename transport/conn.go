package transport

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"skybrawl/logging"
	"skybrawl/protocol"
)

// 队列容量与写超时
const (
	SendQueueSize = 256
	RecvQueueSize = 256
	WriteTimeout  = 5 * time.Second
)

// Conn 对 TCP 连接的轻量包装：读写各一个协程，
// 调用方只通过非阻塞的 Poll/Enqueue 与之交互
type Conn struct {
	nc        net.Conn
	send      chan []byte
	recv      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	sentBytes atomic.Int64
	dropped   atomic.Int64
}

// New 包装已建立的连接并启动读写协程
func New(nc net.Conn) *Conn {
	c := &Conn{
		nc:   nc,
		send: make(chan []byte, SendQueueSize),
		recv: make(chan []byte, RecvQueueSize),
		done: make(chan struct{}),
	}
	go c.readPump()
	go c.writePump()
	return c
}

// RemoteAddr 对端地址
func (c *Conn) RemoteAddr() string {
	if c.nc == nil || c.nc.RemoteAddr() == nil {
		return ""
	}
	return c.nc.RemoteAddr().String()
}

// Enqueue 将完整帧压入发送队列（非阻塞，满则丢弃，返回是否入队）
func (c *Conn) Enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		// 为了实时性，丢弃（防止阻塞 Tick）
		c.dropped.Add(1)
		return false
	}
}

// Poll 非阻塞地取出一帧载荷；没有数据时返回 false
func (c *Conn) Poll() ([]byte, bool) {
	select {
	case p := <-c.recv:
		return p, true
	default:
		return nil, false
	}
}

// Closed 连接是否已关闭
func (c *Conn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// SentBytes 已写出的字节数
func (c *Conn) SentBytes() int64 { return c.sentBytes.Load() }

// Dropped 因队列满被丢弃的帧数
func (c *Conn) Dropped() int64 { return c.dropped.Load() }

// Close 关闭底层连接并结束读写协程（可重复调用）
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.nc.Close()
	})
}

// Flush 在关闭前等待发送队列写完，最多等待 d
func (c *Conn) Flush(d time.Duration) {
	deadline := time.Now().Add(d)
	for len(c.send) > 0 && time.Now().Before(deadline) && !c.Closed() {
		time.Sleep(time.Millisecond)
	}
}

// writePump 独立协程，负责从 send 队列写出到 TCP
func (c *Conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			_ = c.nc.SetWriteDeadline(time.Now().Add(WriteTimeout))
			n, err := c.nc.Write(frame)
			c.sentBytes.Add(int64(n))
			if err != nil {
				// 发送失败不视为断线，由接收超时负责回收
				logging.Log.Debugw("send failed", "remote", c.RemoteAddr(), "err", err)
				return
			}
		}
	}
}

// readPump 读取帧并投递到 recv 队列；队列满时阻塞，形成 TCP 背压
func (c *Conn) readPump() {
	for {
		p, err := protocol.ReadFrame(c.nc)
		if err != nil {
			if !c.Closed() {
				logging.Log.Debugw("read stopped", "remote", c.RemoteAddr(), "err", err)
			}
			return
		}
		select {
		case c.recv <- p:
		case <-c.done:
			return
		}
	}
}
