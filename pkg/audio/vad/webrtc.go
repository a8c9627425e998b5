package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// WebRTC is a Classifier backed by the WebRTC voice activity detector.
// It is not safe for concurrent use.
type WebRTC struct {
	vad *webrtcvad.VAD
}

var _ Classifier = (*WebRTC)(nil)

// NewWebRTC creates a WebRTC classifier with the given mode.
func NewWebRTC(mode int) (Classifier, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("%w: %d: %v", ErrInvalidMode, mode, err)
	}
	return &WebRTC{vad: v}, nil
}

// IsSpeech implements Classifier.
func (w *WebRTC) IsSpeech(frame []byte, sampleRate int) (bool, error) {
	if !w.vad.ValidRateAndFrameLength(sampleRate, len(frame)/2) {
		return false, fmt.Errorf("%w: %d samples at %d Hz", ErrInvalidFrame, len(frame)/2, sampleRate)
	}
	return w.vad.Process(sampleRate, frame)
}
