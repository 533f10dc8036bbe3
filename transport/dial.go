package transport

import (
	"context"
	"net"
	"time"
)

// Dial 在限定时间内建立 TCP 连接
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Conn, error) {
	d := &net.Dialer{Timeout: timeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(nc), nil
}
