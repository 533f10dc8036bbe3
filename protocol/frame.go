package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FrameHeaderSize 帧头：4 字节大端载荷长度
const FrameHeaderSize = 4

// Frame 为载荷加上长度前缀，得到可直接写出的完整帧
func Frame(payload []byte) ([]byte, error) {
	if len(payload) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	b := make([]byte, FrameHeaderSize, FrameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(b, uint32(len(payload)))
	return append(b, payload...), nil
}

// ReadFrame 从流中读取一帧，返回不含长度前缀的载荷
func ReadFrame(r io.Reader) ([]byte, error) {
	var size [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, size[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(size[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes: %w", n, ErrFrameTooLarge)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteFrame 写出一帧，处理短写
func WriteFrame(w io.Writer, payload []byte) error {
	b, err := Frame(payload)
	if err != nil {
		return err
	}
	return writeAll(w, b)
}

// writeAll 循环写出全部数据，短写返回错误
func writeAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}

// ServerFrame 编码服务器消息并加帧
func ServerFrame(m ServerMessage) ([]byte, error) {
	p, err := EncodeServer(m)
	if err != nil {
		return nil, err
	}
	return Frame(p)
}

// ClientFrame 编码客户端消息并加帧
func ClientFrame(m ClientMessage) ([]byte, error) {
	p, err := EncodeClient(m)
	if err != nil {
		return nil, err
	}
	return Frame(p)
}
