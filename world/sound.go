package world

import (
	"skybrawl/scene"
)

// AudioSink 声音层接口；World 只产生播放请求，不关心实现
type AudioSink interface {
	Play(effect SoundEffect, at scene.Vec2)
}

// AudioFunc 函数适配为 AudioSink
type AudioFunc func(effect SoundEffect, at scene.Vec2)

func (f AudioFunc) Play(effect SoundEffect, at scene.Vec2) { f(effect, at) }

// soundNode 场景中的声音节点，接收播放命令并转交给 AudioSink
type soundNode struct {
	sink AudioSink
}

func (s *soundNode) play(cmd scene.Command) {
	if s.sink == nil || !SoundEffect(cmd.Value).Valid() {
		return
	}
	s.sink.Play(SoundEffect(cmd.Value), cmd.Vec)
}

// Valid 是否为已知音效
func (e SoundEffect) Valid() bool {
	return e >= 0 && e < SoundEffectCount
}
