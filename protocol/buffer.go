package protocol

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	ErrShortBuffer    = errors.New("protocol: short buffer")
	ErrStringTooLong  = errors.New("protocol: string too long")
	ErrTooMany        = errors.New("protocol: too many characters")
	ErrTrailingBytes  = errors.New("protocol: trailing bytes after message")
	ErrUnknownKind    = errors.New("protocol: unknown message kind")
	ErrFrameTooLarge  = errors.New("protocol: frame too large")
	ErrNegativeLength = errors.New("protocol: negative length")
)

// writer 大端定长字段写入器
type writer struct {
	buf []byte
}

func (w *writer) int32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *writer) float32(v float32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *writer) bool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *writer) string(s string) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) characters(cs []CharacterState) {
	w.int32(int32(len(cs)))
	for _, c := range cs {
		w.int32(c.ID)
		w.float32(c.X)
		w.float32(c.Y)
		w.int32(c.Hitpoints)
		w.int32(c.Ammo)
		w.float32(c.Knockback)
	}
}

// reader 大端定长字段读取器，出错后后续读取全部返回零值
type reader struct {
	buf []byte
	err error
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.buf) < n {
		r.err = ErrShortBuffer
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *reader) int32() int32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return int32(binary.BigEndian.Uint32(b))
}

func (r *reader) float32() float32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

func (r *reader) bool() bool {
	b := r.take(1)
	if b == nil {
		return false
	}
	return b[0] != 0
}

func (r *reader) string() string {
	b := r.take(4)
	if b == nil {
		return ""
	}
	n := binary.BigEndian.Uint32(b)
	if n > MaxStringLen {
		r.err = ErrStringTooLong
		return ""
	}
	return string(r.take(int(n)))
}

func (r *reader) characters() []CharacterState {
	n := r.int32()
	if r.err != nil {
		return nil
	}
	switch {
	case n < 0:
		r.err = ErrNegativeLength
		return nil
	case n > MaxCharacters:
		r.err = ErrTooMany
		return nil
	case n == 0:
		return nil
	}
	cs := make([]CharacterState, 0, n)
	for i := int32(0); i < n; i++ {
		c := CharacterState{
			ID:        r.int32(),
			X:         r.float32(),
			Y:         r.float32(),
			Hitpoints: r.int32(),
			Ammo:      r.int32(),
			Knockback: r.float32(),
		}
		if r.err != nil {
			return nil
		}
		cs = append(cs, c)
	}
	return cs
}

// done 检查读取结束时的状态：不得有剩余字节
func (r *reader) done() error {
	if r.err != nil {
		return r.err
	}
	if len(r.buf) != 0 {
		return ErrTrailingBytes
	}
	return nil
}
