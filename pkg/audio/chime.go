package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

// Chime 爆发出现时播放的提示音
// Play 不阻塞
type Chime interface {
	Play()
}

// Silent 不发声的提示音（无头模式、关闭音效）
type Silent struct{}

// Play 什么也不做
func (Silent) Play() {}

// EbitenChime 通过 ebiten 音频上下文播放提示音
type EbitenChime struct {
	mu     sync.Mutex
	player *audio.Player
}

// NewEbitenChime 创建 ebiten 提示音
// 已有音频上下文时复用，采样率必须一致
func NewEbitenChime(volume float64) (*EbitenChime, error) {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(int(SampleRate))
	} else if ctx.SampleRate() != int(SampleRate) {
		return nil, fmt.Errorf("audio context sample rate %d, want %d", ctx.SampleRate(), SampleRate)
	}

	samples, err := CoinSamples(SampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize chime: %w", err)
	}

	player := ctx.NewPlayerFromBytes(EncodePCM16(samples))
	player.SetVolume(clampVolume(volume))
	return &EbitenChime{player: player}, nil
}

// SetVolume 设置音量 0.0 ~ 1.0
func (c *EbitenChime) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player.SetVolume(clampVolume(volume))
}

// Play 从头播放
func (c *EbitenChime) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	// 连续爆发时重新开始，而不是叠加
	_ = c.player.Rewind()
	c.player.Play()
}

// BeepChime 通过 beep speaker 播放提示音（终端模式）
type BeepChime struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
}

// NewBeepChime 初始化扬声器并创建提示音
func NewBeepChime(volume float64) (*BeepChime, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}

	c := &BeepChime{
		mixer:  &beep.Mixer{},
		volume: clampVolume(volume),
	}
	speaker.Play(c.mixer)
	return c, nil
}

// Play 把一次提示音加入混音器
func (c *BeepChime) Play() {
	c.mu.Lock()
	vol := c.volume
	c.mu.Unlock()

	streamer, err := CoinStreamer(SampleRate, vol)
	if err != nil {
		return
	}

	speaker.Lock()
	c.mixer.Add(streamer)
	speaker.Unlock()
}

// SetVolume 设置后续提示音的音量
func (c *BeepChime) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = clampVolume(volume)
}

// Close 停止扬声器
func (c *BeepChime) Close() {
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

func clampVolume(volume float64) float64 {
	if volume < 0 {
		return 0
	}
	if volume > 1 {
		return 1
	}
	return volume
}
