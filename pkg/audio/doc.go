// Package audio provides the audio pipeline used to grade pronunciation.
//
// It serves as an umbrella for the audio sub-packages:
//
//   - pcm: mono float32 sample buffers and 16-bit conversion
//   - resampler: sample rate conversion
//   - codec: container and codec readers (wav, ogg, opus, vorbis, mp3)
//   - decode: bytes of any supported container to a mono buffer
//   - trim: leading and trailing silence removal
//   - vad: voice activity segmentation
//   - mfcc: MFCC feature extraction
//
// Example usage:
//
//	import (
//	    "github.com/haivivi/pronounce/pkg/audio/decode"
//	    "github.com/haivivi/pronounce/pkg/audio/mfcc"
//	)
//
//	buf, err := decode.New(decode.Options{SampleRate: 16000}).Decode(ctx, data, ".wav")
//	ext, err := mfcc.New(mfcc.DefaultParams())
//	feats, err := ext.Extract(buf)
package audio
