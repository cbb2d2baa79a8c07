//go:build headless

// alert_audio_headless.go - stub AudioAlert for builds without an audio
// device, parallel to the teacher's audio_backend_headless.go.

package main

type AudioAlert struct{}

func NewAudioAlert() (*AudioAlert, error) { return &AudioAlert{}, nil }
func (a *AudioAlert) Play()               {}
func (a *AudioAlert) Close() error        { return nil }
