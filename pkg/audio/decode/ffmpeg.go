package decode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/haivivi/pronounce/pkg/audio/pcm"
)

// FFmpeg defaults.
const (
	DefaultFFmpegPath    = "ffmpeg"
	DefaultTimeout       = 5 * time.Second
	DefaultMaxConcurrent = 4
)

// FFmpegOptions configures the ffmpeg transcoder.
type FFmpegOptions struct {
	// Path is the ffmpeg binary, looked up in PATH if not absolute.
	Path string

	// SampleRate is the rate ffmpeg resamples to. Default is
	// pcm.DefaultSampleRate.
	SampleRate int

	// Timeout bounds each transcode. Default is DefaultTimeout.
	Timeout time.Duration

	// MaxConcurrent limits simultaneous ffmpeg processes. Default is
	// DefaultMaxConcurrent.
	MaxConcurrent int
}

// FFmpeg transcodes audio by piping it through an ffmpeg subprocess that
// writes raw 16-bit mono PCM to stdout.
type FFmpeg struct {
	path    string
	rate    int
	timeout time.Duration
	sem     *semaphore.Weighted
}

var _ External = (*FFmpeg)(nil)

// NewFFmpeg creates an ffmpeg transcoder.
func NewFFmpeg(opts FFmpegOptions) *FFmpeg {
	f := &FFmpeg{
		path:    opts.Path,
		rate:    opts.SampleRate,
		timeout: opts.Timeout,
	}
	if f.path == "" {
		f.path = DefaultFFmpegPath
	}
	if f.rate <= 0 {
		f.rate = pcm.DefaultSampleRate
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	n := opts.MaxConcurrent
	if n <= 0 {
		n = DefaultMaxConcurrent
	}
	f.sem = semaphore.NewWeighted(int64(n))
	return f
}

// DecodeExternal implements External. The hint is unused; ffmpeg probes the
// input itself.
func (f *FFmpeg) DecodeExternal(ctx context.Context, data []byte, hint string) (*pcm.Buffer, error) {
	bin, err := exec.LookPath(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTranscoderNotFound, f.path)
	}

	if err := f.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("decode: wait for transcoder slot: %w", err)
	}
	defer f.sem.Release(1)

	tctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	cmd := exec.CommandContext(tctx, bin,
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-f", "s16le", "-ac", "1", "-ar", strconv.Itoa(f.rate),
		"pipe:1",
	)
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w after %s", ErrTranscodeTimeout, f.timeout)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("decode: ffmpeg: %w", err)
		}
		return nil, fmt.Errorf("decode: ffmpeg: %w: %s", err, msg)
	}
	if stdout.Len() < 2 {
		return nil, fmt.Errorf("decode: ffmpeg produced no audio")
	}
	return pcm.DecodeInt16LE(stdout.Bytes(), f.rate), nil
}
