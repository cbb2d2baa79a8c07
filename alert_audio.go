//go:build !headless

// alert_audio.go - audible color-alert tone, an alternative/addition to the
// terminal BEL (spec.md §4.4 "Color-alert bell"). Same oto.Context/
// oto.Player plumbing as the teacher's audio_backend_oto.go, but playing a
// short fixed tone instead of streaming a sound chip's ring buffer.

package main

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const (
	alertSampleRate = 44100
	alertFreqHz     = 880.0
	alertDurationMs = 120
)

// AudioAlert plays a short sine-wave beep on demand, for weavers running
// headless-of-bell terminals (tmux with bells muted, SSH sessions that eat
// \a, ...).
type AudioAlert struct {
	mu     sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	tone   []byte
}

// NewAudioAlert opens the audio device and pre-renders the alert tone.
func NewAudioAlert() (*AudioAlert, error) {
	op := &oto.NewContextOptions{
		SampleRate:   alertSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	a := &AudioAlert{ctx: ctx, tone: renderTone(alertFreqHz, alertDurationMs, alertSampleRate)}
	return a, nil
}

// renderTone synthesizes a fading sine wave as little-endian float32 PCM.
func renderTone(freqHz float64, durationMs, sampleRate int) []byte {
	n := sampleRate * durationMs / 1000
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		fade := 1.0 - float64(i)/float64(n)
		sample := float32(math.Sin(2*math.Pi*freqHz*t) * fade * 0.4)
		bits := math.Float32bits(sample)
		out[i*4+0] = byte(bits)
		out[i*4+1] = byte(bits >> 8)
		out[i*4+2] = byte(bits >> 16)
		out[i*4+3] = byte(bits >> 24)
	}
	return out
}

// Play starts the tone from the beginning, replacing any player already in
// flight.
func (a *AudioAlert) Play() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.player != nil {
		a.player.Close()
	}
	a.player = a.ctx.NewPlayer(newByteReader(a.tone))
	a.player.Play()
}

func (a *AudioAlert) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.player != nil {
		return a.player.Close()
	}
	return nil
}

type byteReader struct {
	data []byte
	pos  int
}

func newByteReader(data []byte) *byteReader { return &byteReader{data: data} }

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	if n < len(p) {
		for i := n; i < len(p); i++ {
			p[i] = 0
		}
		return len(p), nil
	}
	return n, nil
}
