// Package decode turns arbitrary uploaded audio bytes into mono PCM at a
// fixed sample rate.
//
// Decoding is split into two capabilities. A Native decoder handles the
// containers that can be read in-process (WAVE, Ogg Opus, Ogg Vorbis, MP3).
// An External decoder, by default an ffmpeg subprocess, is used as a fallback
// whenever the native path fails, which covers WebM/Matroska uploads from
// browsers.
package decode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
	"github.com/haivivi/pronounce/pkg/audio/resampler"
)

// Sentinel errors.
var (
	// ErrDecode is returned when audio cannot be decoded by any path.
	ErrDecode = errors.New("decode: cannot decode audio")

	// ErrUnsupportedContainer is returned by the native path for containers
	// it does not handle.
	ErrUnsupportedContainer = errors.New("decode: unsupported container")

	// ErrTranscodeTimeout is returned when the external transcoder exceeds
	// its deadline.
	ErrTranscodeTimeout = errors.New("decode: transcode timed out")

	// ErrTranscoderNotFound is returned when the external transcoder binary
	// is not available.
	ErrTranscoderNotFound = errors.New("decode: transcoder not found")
)

// Native decodes audio in-process. The returned buffer is mono at whatever
// rate the source carries.
type Native interface {
	DecodeNative(data []byte, hint string) (*pcm.Buffer, error)
}

// External decodes audio with an out-of-process tool.
type External interface {
	DecodeExternal(ctx context.Context, data []byte, hint string) (*pcm.Buffer, error)
}

// Options configures a Decoder.
type Options struct {
	// SampleRate is the output rate. Default is pcm.DefaultSampleRate.
	SampleRate int

	// Native is the in-process decoder. Default is Builtin.
	Native Native

	// External is the fallback decoder. Nil disables the fallback.
	External External

	// Logger receives debug output about fallbacks. Default is slog.Default().
	Logger *slog.Logger
}

// Decoder orchestrates native decoding with an external fallback.
type Decoder struct {
	rate     int
	native   Native
	external External
	logger   *slog.Logger
}

// New creates a Decoder.
func New(opts Options) *Decoder {
	d := &Decoder{
		rate:     opts.SampleRate,
		native:   opts.Native,
		external: opts.External,
		logger:   opts.Logger,
	}
	if d.rate <= 0 {
		d.rate = pcm.DefaultSampleRate
	}
	if d.native == nil {
		d.native = Builtin{}
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	return d
}

// SampleRate returns the output rate of the decoder.
func (d *Decoder) SampleRate() int {
	return d.rate
}

// Decode decodes data to mono PCM at the decoder's rate. The hint is an
// optional MIME type or file extension used when sniffing is inconclusive.
func (d *Decoder) Decode(ctx context.Context, data []byte, hint string) (*pcm.Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	buf, nativeErr := d.native.DecodeNative(data, hint)
	if nativeErr == nil {
		return d.finish(buf)
	}
	if d.external == nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, nativeErr)
	}

	d.logger.Debug("decode: native path failed, falling back",
		"container", Sniff(data, hint), "bytes", len(data), "error", nativeErr)

	buf, extErr := d.external.DecodeExternal(ctx, data, hint)
	if extErr != nil {
		if errors.Is(nativeErr, ErrUnsupportedContainer) {
			return nil, fmt.Errorf("%w: %w", ErrDecode, extErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, errors.Join(nativeErr, extErr))
	}
	return d.finish(buf)
}

// DecodeFile reads and decodes the file at path, using its extension as the
// container hint.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (*pcm.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("decode: read %s: %w", path, err)
	}
	buf, err := d.Decode(ctx, data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return buf, nil
}

func (d *Decoder) finish(buf *pcm.Buffer) (*pcm.Buffer, error) {
	if buf.IsEmpty() {
		return nil, fmt.Errorf("%w: no samples decoded", ErrDecode)
	}
	out, err := resampler.Resample(buf, d.rate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return out, nil
}
