package metrics

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/yashas004/persona/pkg/capture"
)

// ErrEmptyClip is returned when audio extraction is asked to analyse a clip
// with no samples or an invalid sample rate. This is a hard failure surfaced
// to the caller — never a silent zero-fill.
var ErrEmptyClip = errors.New("metrics: audio clip is empty or unreadable")

// metricCap is the upper clamp applied to every audio metric at extraction.
const metricCap = 100.0

// Pitch tracking parameters: hop size per estimate and the plausible voice
// band searched for an autocorrelation peak.
const (
	pitchHopSize    = 2048
	pitchMinHz      = 50.0
	pitchMaxHz      = 500.0
	voicingMinPower = 1e-6
)

// ClarityFunc produces the clarity reading for one clip. The default is an
// explicit placeholder drawing uniformly from [60, 95]; swap it via
// WithClarity to plug in a real clarity model without touching the
// aggregation or feedback contracts.
type ClarityFunc func() float64

func defaultClarity() float64 {
	return 60 + rand.Float64()*35
}

// AudioMetrics holds the voice feature readings for one recorded clip.
// Audio is analysed once per session, after capture completes.
type AudioMetrics struct {
	Volume         float64 `json:"volume"`
	PitchVariation float64 `json:"pitch_variation"`
	SpeechRate     float64 `json:"speech_rate"`
	Clarity        float64 `json:"clarity"`
}

// AudioExtractor analyses whole clips. The zero value is not usable; create
// one with NewAudioExtractor.
type AudioExtractor struct {
	clarity ClarityFunc
}

// AudioOption configures an AudioExtractor.
type AudioOption func(*AudioExtractor)

// WithClarity replaces the placeholder clarity scorer.
func WithClarity(fn ClarityFunc) AudioOption {
	return func(e *AudioExtractor) {
		e.clarity = fn
	}
}

// NewAudioExtractor creates an AudioExtractor with the default placeholder
// clarity scorer unless overridden.
func NewAudioExtractor(opts ...AudioOption) *AudioExtractor {
	e := &AudioExtractor{clarity: defaultClarity}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract derives AudioMetrics from a captured clip.
//
//   - Volume: mean squared amplitude ×1000, capped at 100.
//   - PitchVariation: stddev of the non-zero pitch-track estimates ×10,
//     capped at 100.
//   - SpeechRate: total zero-crossing count ÷1000, capped at 100. A coarse
//     proxy, not a words-per-minute measure.
//   - Clarity: the configured ClarityFunc.
//
// Returns ErrEmptyClip if the clip has no samples or a non-positive sample
// rate.
func (e *AudioExtractor) Extract(clip capture.Clip) (AudioMetrics, error) {
	if len(clip.Samples) == 0 || clip.SampleRate <= 0 {
		return AudioMetrics{}, ErrEmptyClip
	}

	var sumSq float64
	crossings := 0
	for i, s := range clip.Samples {
		sumSq += s * s
		if i > 0 && (s >= 0) != (clip.Samples[i-1] >= 0) {
			crossings++
		}
	}
	meanSq := sumSq / float64(len(clip.Samples))

	return AudioMetrics{
		Volume:         math.Min(metricCap, meanSq*1000),
		PitchVariation: math.Min(metricCap, pitchDeviation(clip)*10),
		SpeechRate:     math.Min(metricCap, float64(crossings)/1000),
		Clarity:        e.clarity(),
	}, nil
}

// pitchDeviation returns the standard deviation of the voiced pitch-track
// estimates across the clip. Unvoiced hops (no usable autocorrelation peak)
// are excluded; a clip with fewer than two voiced hops deviates by zero.
func pitchDeviation(clip capture.Clip) float64 {
	var track []float64
	for off := 0; off+pitchHopSize <= len(clip.Samples); off += pitchHopSize {
		if hz := estimatePitch(clip.Samples[off:off+pitchHopSize], clip.SampleRate); hz > 0 {
			track = append(track, hz)
		}
	}
	if len(track) < 2 {
		return 0
	}

	var mean float64
	for _, hz := range track {
		mean += hz
	}
	mean /= float64(len(track))

	var variance float64
	for _, hz := range track {
		d := hz - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(track)))
}

// estimatePitch finds the fundamental frequency of one hop by locating the
// autocorrelation peak within the plausible voice band. Returns 0 for
// unvoiced or too-quiet hops.
func estimatePitch(window []float64, sampleRate int) float64 {
	var power float64
	for _, s := range window {
		power += s * s
	}
	if power/float64(len(window)) < voicingMinPower {
		return 0
	}

	minLag := int(float64(sampleRate) / pitchMaxHz)
	maxLag := int(float64(sampleRate) / pitchMinHz)
	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(window) {
		maxLag = len(window) - 1
	}
	if minLag >= maxLag {
		return 0
	}

	bestLag, bestCorr := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(window); i++ {
			corr += window[i] * window[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}
	// Require the peak to carry a meaningful share of the window energy,
	// otherwise treat the hop as unvoiced.
	if bestLag == 0 || bestCorr < 0.3*power {
		return 0
	}
	return float64(sampleRate) / float64(bestLag)
}
