package tui

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"skybrawl/scene"
	"skybrawl/world"
)

const sampleRate = beep.SampleRate(44100)

// waveform 合成音的波形
type waveform int

const (
	waveSine waveform = iota
	waveSquare
	waveNoise
)

// toneSpec 一个音效的合成参数
type toneSpec struct {
	freq     float64
	duration time.Duration
	wave     waveform
	volume   float64
}

var toneTable = [world.SoundEffectCount]toneSpec{
	world.SoundGunfire:       {freq: 880, duration: 40 * time.Millisecond, wave: waveSquare, volume: 0.15},
	world.SoundLaunchMissile: {freq: 220, duration: 180 * time.Millisecond, wave: waveSine, volume: 0.3},
	world.SoundExplosion1:    {duration: 350 * time.Millisecond, wave: waveNoise, volume: 0.35},
	world.SoundExplosion2:    {duration: 500 * time.Millisecond, wave: waveNoise, volume: 0.3},
	world.SoundCollectPickup: {freq: 1320, duration: 90 * time.Millisecond, wave: waveSine, volume: 0.25},
}

// tone 定长振荡器
type tone struct {
	spec     toneSpec
	phase    float64
	position int
	length   int
	rate     beep.SampleRate
}

func newTone(spec toneSpec, rate beep.SampleRate) *tone {
	return &tone{spec: spec, length: rate.N(spec.duration), rate: rate}
}

func (t *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if t.position >= t.length {
			return i, i > 0
		}
		var v float64
		switch t.spec.wave {
		case waveSine:
			v = math.Sin(2 * math.Pi * t.phase)
		case waveSquare:
			v = 1
			if t.phase >= 0.5 {
				v = -1
			}
		case waveNoise:
			v = rand.Float64()*2 - 1
		}
		// 线性淡出，避免结尾爆音
		v *= t.spec.volume * (1 - float64(t.position)/float64(t.length))
		samples[i][0], samples[i][1] = v, v

		t.phase += t.spec.freq / float64(t.rate)
		t.phase -= math.Floor(t.phase)
		t.position++
	}
	return len(samples), true
}

func (t *tone) Err() error { return nil }

// Speaker 声音输出：实现 world.AudioSink，未初始化时静默
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

func NewSpeaker() *Speaker {
	return &Speaker{mixer: &beep.Mixer{}}
}

// Init 打开声卡；失败时游戏照常进行，只是没有声音
func (s *Speaker) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Play 合成并播放一个音效；位置参数暂不使用
func (s *Speaker) Play(effect world.SoundEffect, _ scene.Vec2) {
	if !effect.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Add(newTone(toneTable[effect], sampleRate))
	speaker.Unlock()
}

// Close 停止所有声音并关闭声卡
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	s.initialized = false
}
