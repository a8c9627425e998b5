package pronounce

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/haivivi/pronounce/pkg/audio/codec/wav"
	"github.com/haivivi/pronounce/pkg/audio/decode"
	"github.com/haivivi/pronounce/pkg/audio/mfcc"
	"github.com/haivivi/pronounce/pkg/audio/pcm"
	"github.com/haivivi/pronounce/pkg/audio/trim"
	"github.com/haivivi/pronounce/pkg/audio/vad"
	"github.com/haivivi/pronounce/pkg/corpus"
)

const rate = 16000

// energyClassifier marks a frame as speech when any sample exceeds limit.
type energyClassifier struct{ limit int16 }

func (c energyClassifier) IsSpeech(frame []byte, _ int) (bool, error) {
	for i := 0; i+1 < len(frame); i += 2 {
		v := int16(binary.LittleEndian.Uint16(frame[i:]))
		if v > c.limit || v < -c.limit {
			return true, nil
		}
	}
	return false, nil
}

func newSegmenter(t *testing.T, cls vad.Classifier) *vad.Segmenter {
	t.Helper()
	s, err := vad.New(vad.Options{NewClassifier: func(int) (vad.Classifier, error) { return cls, nil }})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

// vowel synthesizes 0.2s silence, 0.6s of a harmonic tone at f0 and 0.2s
// silence.
func vowel(f0 float64) *pcm.Buffer {
	pad := rate / 5
	n := rate * 3 / 5
	samples := make([]float32, pad+n+pad)
	for i := 0; i < n; i++ {
		x := float64(i) / rate
		env := math.Sin(math.Pi * float64(i) / float64(n))
		v := 0.5*math.Sin(2*math.Pi*f0*x) + 0.3*math.Sin(2*math.Pi*2*f0*x) + 0.15*math.Sin(2*math.Pi*4*f0*x)
		samples[pad+i] = float32(0.6 * env * v)
	}
	return pcm.New(samples, rate)
}

// wavBytes encodes buf as a WAVE file.
func wavBytes(t *testing.T, buf *pcm.Buffer) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := wav.Encode(f, buf); err != nil {
		t.Fatal(err)
	}
	f.Close()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

// reference extracts corpus features from audio the way the builder does.
func reference(t *testing.T, ext *mfcc.Extractor, audio []byte) *mfcc.Matrix {
	t.Helper()
	buf, err := decode.New(decode.Options{}).Decode(context.Background(), audio, "wav")
	if err != nil {
		t.Fatal(err)
	}
	m, err := ext.Extract(trim.Trim(buf, trim.Options{}))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

type fixture struct {
	holder *corpus.Holder
	hello  []byte
	other  []byte
}

// newFixture builds a corpus with hello_0 (a 220Hz vowel) and hello_1 (a
// 330Hz vowel).
func newFixture(t *testing.T) fixture {
	t.Helper()
	ext, err := mfcc.New(mfcc.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	hello := wavBytes(t, vowel(220))
	other := wavBytes(t, vowel(330))
	c, err := corpus.New(corpus.Header{Params: ext.Params(), BuildID: "test"}, []corpus.Entry{
		{Word: "hello", Index: 0, Features: reference(t, ext, hello)},
		{Word: "hello", Index: 1, Features: reference(t, ext, other)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return fixture{holder: corpus.NewHolder(c), hello: hello, other: other}
}

func newEvaluator(t *testing.T, f fixture, opts Options) *Evaluator {
	t.Helper()
	if opts.Segmenter == nil {
		opts.Segmenter = newSegmenter(t, energyClassifier{limit: 300})
	}
	e, err := New(f.holder, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestEvaluateNearIdenticalPasses(t *testing.T) {
	f := newFixture(t)
	e := newEvaluator(t, f, Options{})

	d, err := e.Evaluate(context.Background(), Request{Word: "Hello", Tier: TierA, Audio: f.hello, ContainerHint: "audio/wav"})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !d.Passed || d.Points != 3 {
		t.Fatalf("decision = %+v", d)
	}
	if d.MatchedIndex != 0 {
		t.Errorf("MatchedIndex = %d, want 0", d.MatchedIndex)
	}
	if d.RawCost < 0 || d.RawCost >= 130 || d.Threshold != 130 {
		t.Errorf("cost %f threshold %f", d.RawCost, d.Threshold)
	}

	r := Respond(d, nil)
	if r.Status != StatusGraded || !r.Passed || r.Points != 3 || r.RawCost != d.RawCost {
		t.Errorf("Respond = %+v", r)
	}
}

func TestScoreAggregation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	minRes, err := newEvaluator(t, f, Options{}).Score(ctx, "hello", f.hello, "")
	if err != nil {
		t.Fatal(err)
	}
	meanRes, err := newEvaluator(t, f, Options{Aggregation: AggregateMean}).Score(ctx, "hello", f.hello, "")
	if err != nil {
		t.Fatal(err)
	}

	if len(minRes.Costs) != 2 || minRes.Costs[0] >= minRes.Costs[1] {
		t.Fatalf("costs = %v, want the matching reference first", minRes.Costs)
	}
	if minRes.Cost != minRes.Costs[0] {
		t.Errorf("min cost = %f, want %f", minRes.Cost, minRes.Costs[0])
	}
	want := (meanRes.Costs[0] + meanRes.Costs[1]) / 2
	if math.Abs(meanRes.Cost-want) > 1e-9 {
		t.Errorf("mean cost = %f, want %f", meanRes.Cost, want)
	}
	if meanRes.Cost <= minRes.Cost {
		t.Errorf("mean %f should exceed min %f", meanRes.Cost, minRes.Cost)
	}
	if minRes.MatchedIndex != 0 || meanRes.MatchedIndex != 0 {
		t.Errorf("MatchedIndex = %d, %d", minRes.MatchedIndex, meanRes.MatchedIndex)
	}
	if minRes.Speech.SpeechFrames == 0 || minRes.Frames == 0 {
		t.Errorf("result = %+v", minRes)
	}
}

func TestTierThresholds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := newEvaluator(t, f, Options{}).Score(ctx, "hello", f.other, "")
	if err != nil {
		t.Fatal(err)
	}
	cost := res.Cost

	// A cost exactly at the threshold fails.
	e := newEvaluator(t, f, Options{
		Thresholds: Thresholds{TierA: cost + 1, TierB: cost, TierC: cost - 1},
		Points:     &Points{Pass: 5, Fail: 1},
	})
	tests := []struct {
		tier   Tier
		passed bool
		points int
	}{
		{TierA, true, 5},
		{TierB, false, 1},
		{TierC, false, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			d, err := e.Evaluate(ctx, Request{Word: "hello", Tier: tt.tier, Audio: f.other})
			if err != nil {
				t.Fatal(err)
			}
			if d.Passed != tt.passed || d.Points != tt.points || d.RawCost != cost {
				t.Fatalf("decision = %+v", d)
			}
		})
	}
}

func TestTierMonotonicity(t *testing.T) {
	th := DefaultThresholds()
	for _, cost := range []float64{0, 50, 109.9, 110, 115, 120, 125, 130, 200} {
		a, b, c := cost < th[TierA], cost < th[TierB], cost < th[TierC]
		if (c && !b) || (b && !a) {
			t.Errorf("cost %f: A=%v B=%v C=%v", cost, a, b, c)
		}
	}
	if th[TierA] != 130 || th[TierB] != 120 || th[TierC] != 110 {
		t.Errorf("thresholds = %v", th)
	}
}

func TestParseTier(t *testing.T) {
	for in, want := range map[string]Tier{"a": TierA, " B ": TierB, "C": TierC} {
		if got, err := ParseTier(in); err != nil || got != want {
			t.Errorf("ParseTier(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseTier("D"); !errors.Is(err, ErrInvalidTier) {
		t.Errorf("ParseTier(D): %v", err)
	}
}

func TestUnknownWord(t *testing.T) {
	f := newFixture(t)
	e := newEvaluator(t, f, Options{})

	_, err := e.Evaluate(context.Background(), Request{Word: "zzzznotaword", Tier: TierA, Audio: f.hello})
	if !errors.Is(err, ErrUnknownWord) {
		t.Fatalf("got %v, want ErrUnknownWord", err)
	}
	if r := Respond(nil, err); r.Status != StatusUnavailable || r.Passed {
		t.Errorf("Respond = %+v", r)
	}

	_, err = e.Score(context.Background(), "helo", f.hello, "")
	var uw *UnknownWordError
	if !errors.As(err, &uw) || len(uw.Suggestions) == 0 || uw.Suggestions[0] != "hello" {
		t.Fatalf("got %v", err)
	}
	if !strings.Contains(err.Error(), "did you mean hello") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestEvaluateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	silent := wavBytes(t, pcm.New(make([]float32, rate), rate))

	tests := []struct {
		name    string
		cls     vad.Classifier
		req     Request
		wantErr error
		status  Status
	}{
		{"invalid tier", nil, Request{Word: "hello", Tier: "D", Audio: f.hello}, ErrInvalidTier, StatusRejected},
		{"undecodable", nil, Request{Word: "hello", Tier: TierA, Audio: []byte("garbage bytes")}, decode.ErrDecode, StatusRejected},
		{"empty", nil, Request{Word: "hello", Tier: TierA}, decode.ErrDecode, StatusRejected},
		{"silent", nil, Request{Word: "hello", Tier: TierA, Audio: silent}, ErrEmptyAudio, StatusNoSpeech},
		{"no speech", energyClassifier{limit: math.MaxInt16}, Request{Word: "hello", Tier: TierA, Audio: f.hello}, ErrNoSpeech, StatusNoSpeech},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts Options
			if tt.cls != nil {
				opts.Segmenter = newSegmenter(t, tt.cls)
			}
			d, err := newEvaluator(t, f, opts).Evaluate(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) || d != nil {
				t.Fatalf("got %+v, %v; want %v", d, err, tt.wantErr)
			}
			r := Respond(d, err)
			if r.Status != tt.status || r.Passed || r.Points != 0 || r.Message == "" {
				t.Errorf("Respond = %+v", r)
			}
		})
	}
}

func TestNewParamsMismatch(t *testing.T) {
	f := newFixture(t)
	p := mfcc.DefaultParams()
	p.NumCoeffs = 20
	ext, err := mfcc.New(p)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(f.holder, Options{Extractor: ext}); !errors.Is(err, ErrParamsMismatch) {
		t.Fatalf("got %v, want ErrParamsMismatch", err)
	}

	dec := decode.New(decode.Options{SampleRate: 8000})
	if _, err := New(f.holder, Options{Decoder: dec}); !errors.Is(err, ErrParamsMismatch) {
		t.Fatalf("decoder rate: got %v, want ErrParamsMismatch", err)
	}

	if _, err := New(f.holder, Options{Aggregation: "median"}); err == nil {
		t.Fatal("unknown aggregation accepted")
	}
}

func TestRespondWithoutDecision(t *testing.T) {
	if r := Respond(nil, nil); r.Status != StatusUnavailable {
		t.Errorf("Respond(nil, nil) = %+v", r)
	}
	if r := Respond(nil, context.Canceled); r.Status != StatusUnavailable {
		t.Errorf("Respond(canceled) = %+v", r)
	}
}

func TestMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { mp.Shutdown(context.Background()) })
	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatal(err)
	}

	f := newFixture(t)
	e := newEvaluator(t, f, Options{Metrics: m})
	ctx := context.Background()
	e.Evaluate(ctx, Request{Word: "hello", Tier: TierA, Audio: f.hello})
	e.Evaluate(ctx, Request{Word: "nope", Tier: TierA, Audio: f.hello})

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	var total int64
	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			found[md.Name] = true
			if sum, ok := md.Data.(metricdata.Sum[int64]); ok && md.Name == "pronounce.evaluations" {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	if total != 2 {
		t.Errorf("evaluations = %d, want 2", total)
	}
	for _, name := range []string{"pronounce.evaluation.duration", "pronounce.evaluation.cost"} {
		if !found[name] {
			t.Errorf("metric %s not recorded", name)
		}
	}
}
