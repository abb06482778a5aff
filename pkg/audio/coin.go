// Package audio 提供爆发出现时的金币提示音
//
// 提示音由两个正弦音符组成（B5 → E6），用 beep 合成。
// 窗口模式把合成结果转成 PCM 交给 ebiten 播放，终端模式直接交给 beep speaker。
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// SampleRate 提示音采样率
const SampleRate = beep.SampleRate(48000)

// 金币提示音参数
const (
	CoinNote1Freq     = 987.77  // B5
	CoinNote2Freq     = 1318.51 // E6
	CoinNote1Duration = 80 * time.Millisecond
	CoinNote2Duration = 280 * time.Millisecond
	CoinAttack        = 5 * time.Millisecond
	CoinNote1Release  = 40 * time.Millisecond
	CoinNote2Release  = 200 * time.Millisecond
)

// envelope 为音符加上起音和释音
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: beep.Take(rate.N(duration), s),
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if remaining := e.total - e.position; remaining < e.release {
			vol = math.Max(0, float64(remaining)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume 线性音量转 beep 的对数音量，0 为静音
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// CoinStreamer 生成一次金币提示音
func CoinStreamer(rate beep.SampleRate, volume float64) (beep.Streamer, error) {
	n1, err := generators.SineTone(rate, CoinNote1Freq)
	if err != nil {
		return nil, fmt.Errorf("coin note 1: %w", err)
	}
	n2, err := generators.SineTone(rate, CoinNote2Freq)
	if err != nil {
		return nil, fmt.Errorf("coin note 2: %w", err)
	}

	sequence := beep.Seq(
		newEnvelope(n1, CoinNote1Duration, CoinAttack, CoinNote1Release, rate),
		newEnvelope(n2, CoinNote2Duration, CoinAttack, CoinNote2Release, rate),
	)
	// 正弦满幅太刺耳
	return newVolume(sequence, 0.5*volume), nil
}

// CoinSamples 合成一次金币提示音的全部采样帧
func CoinSamples(rate beep.SampleRate, volume float64) ([][2]float64, error) {
	streamer, err := CoinStreamer(rate, volume)
	if err != nil {
		return nil, err
	}

	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := streamer.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			break
		}
	}
	return out, streamer.Err()
}

// EncodePCM16 把采样帧编码为 16 位小端立体声 PCM
func EncodePCM16(samples [][2]float64) []byte {
	pcm := make([]byte, len(samples)*4)
	for i, frame := range samples {
		for ch := 0; ch < 2; ch++ {
			v := math.Max(-1, math.Min(1, frame[ch]))
			binary.LittleEndian.PutUint16(pcm[i*4+ch*2:], uint16(int16(v*math.MaxInt16)))
		}
	}
	return pcm
}
