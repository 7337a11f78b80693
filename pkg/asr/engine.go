package asr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/speechkit/asr-service/pkg/audio"
	"github.com/speechkit/asr-service/pkg/logger"
)

var (
	// ErrNoTranscriber is returned when the engine was built without a
	// transcriber backend.
	ErrNoTranscriber = errors.New("asr: no transcriber configured")
	// ErrInvalidChunk is returned for non-positive chunk lengths.
	ErrInvalidChunk = errors.New("asr: chunk length must be positive")
)

// Engine drives the full pipeline: diarize (when possible), transcribe
// chunk by chunk, reconcile speakers, normalize labels and merge.
type Engine struct {
	transcriber Transcriber
	diarizer    Diarizer
	filter      *RepetitionFilter
	alignChunks bool
	log         *slog.Logger
}

// EngineOption configures optional engine collaborators.
type EngineOption func(*Engine)

// WithDiarizer enables the diarization-first strategy. A nil diarizer
// keeps the engine in fallback mode.
func WithDiarizer(d Diarizer) EngineOption {
	return func(e *Engine) { e.diarizer = d }
}

// WithChunkAlignment switches the diarization strategy from per-turn
// transcription to fixed-size chunks aligned to turns by maximum overlap.
// Some recognition backends degrade on very short or very long inputs;
// this keeps chunk sizes uniform at the cost of coarser attribution.
func WithChunkAlignment() EngineOption {
	return func(e *Engine) { e.alignChunks = true }
}

// WithRepetitionFilter enables simhash-based hallucination suppression.
func WithRepetitionFilter(f *RepetitionFilter) EngineOption {
	return func(e *Engine) { e.filter = f }
}

// WithLogger overrides the engine logger.
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) { e.log = log }
}

// NewEngine builds an engine around the given transcriber.
func NewEngine(t Transcriber, opts ...EngineOption) *Engine {
	e := &Engine{transcriber: t, log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transcribe runs the pipeline over a normalized buffer. audioPath points
// at the on-disk source file for the diarizer; when it is empty the
// fixed-chunk fallback encodes the buffer to a temporary WAV for one
// best-effort diarization pass instead. chunkSeconds bounds the audio
// handed to the transcriber per call.
//
// The diarization-first strategy is used when a diarizer is configured and
// audioPath is set; any diarization failure degrades to the fallback
// instead of failing the request. Individual chunk transcription errors
// are logged and skipped so one bad chunk never loses the rest.
func (e *Engine) Transcribe(ctx context.Context, buf *audio.Buffer, audioPath, language string, chunkSeconds float64) ([]Segment, error) {
	if e.transcriber == nil {
		return nil, ErrNoTranscriber
	}
	if chunkSeconds <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChunk, chunkSeconds)
	}
	if buf == nil || len(buf.Samples) == 0 {
		return []Segment{}, nil
	}

	if e.diarizer != nil && audioPath != "" {
		segments, ok := e.transcribeDiarized(ctx, buf, audioPath, language, chunkSeconds)
		if ok {
			return segments, nil
		}
		// 说话人分离失败, 降级为固定分块模式; 不再重试分离
		return e.transcribeFallback(ctx, buf, language, chunkSeconds, nil)
	}

	var turns []SpeakerTurn
	if e.diarizer != nil {
		turns = e.diarizeBuffer(ctx, buf)
	}
	return e.transcribeFallback(ctx, buf, language, chunkSeconds, turns)
}

// diarizeBuffer writes buf to a temporary WAV and runs one best-effort
// diarization pass over it. Any failure degrades to nil turns.
func (e *Engine) diarizeBuffer(ctx context.Context, buf *audio.Buffer) []SpeakerTurn {
	tmp, err := os.CreateTemp("", "asr-diarize-*.wav")
	if err != nil {
		e.log.Warn("temp file for diarization failed", "error", err)
		return nil
	}
	defer os.Remove(tmp.Name())

	if err := audio.EncodeWAV(tmp, buf); err != nil {
		tmp.Close()
		e.log.Warn("encode audio for diarization failed", "error", err)
		return nil
	}
	if err := tmp.Close(); err != nil {
		e.log.Warn("close temp diarization file failed", "error", err)
		return nil
	}

	started := time.Now()
	turns, err := e.diarizer.Diarize(ctx, tmp.Name())
	if err != nil {
		logger.LogChunkProcessing(e.log, "diarize", "diarize_failed", 0, buf.Duration(),
			time.Since(started).Milliseconds(), err.Error())
		return nil
	}
	logger.LogChunkProcessing(e.log, "diarize", "diarize_done", 0, buf.Duration(),
		time.Since(started).Milliseconds(), "")
	return turns
}

// transcribeDiarized implements the diarization-first strategy. The second
// return value reports whether diarization produced usable turns; false
// tells the caller to degrade to the fallback.
func (e *Engine) transcribeDiarized(ctx context.Context, buf *audio.Buffer, audioPath, language string, chunkSeconds float64) ([]Segment, bool) {
	started := time.Now()
	turns, err := e.diarizer.Diarize(ctx, audioPath)
	if err != nil {
		logger.LogChunkProcessing(e.log, "diarize", "diarize_failed", 0, buf.Duration(),
			time.Since(started).Milliseconds(), err.Error())
		return nil, false
	}
	logger.LogChunkProcessing(e.log, "diarize", "diarize_done", 0, buf.Duration(),
		time.Since(started).Milliseconds(), "")
	if len(turns) == 0 {
		e.log.Warn("diarizer returned no turns, using fixed chunks", "audio_path", audioPath)
		return nil, false
	}

	if e.alignChunks {
		segments, ferr := e.transcribeFallback(ctx, buf, language, chunkSeconds, turns)
		if ferr != nil {
			return nil, false
		}
		return segments, true
	}

	duration := buf.Duration()
	segments := make([]Segment, 0, len(turns))
	for _, turn := range turns {
		start := turn.Start
		if start < 0 {
			start = 0
		}
		end := turn.End
		if end > duration {
			end = duration
		}
		if start >= end {
			continue
		}
		// 超长 turn 再按 chunkSeconds 切分, 避免一次性塞给识别后端
		for cs := start; cs < end; cs += chunkSeconds {
			ce := cs + chunkSeconds
			if ce > end {
				ce = end
			}
			seg, ok := e.transcribeRange(ctx, buf, cs, ce, language, turn.Speaker)
			if ok {
				segments = append(segments, seg)
			}
		}
	}

	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
	applyLabels(segments, SpeakerLabels(segments))
	if e.filter != nil {
		segments = e.filter.Filter(segments)
	}
	return MergeConsecutive(segments), true
}

// transcribeFallback splits the buffer into fixed chunks. When turns are
// provided the chunks are speaker-aligned by maximum overlap; otherwise
// every segment gets DefaultSpeaker and no merging happens (merging
// identically-labeled chunks would collapse the whole audio into one
// segment).
func (e *Engine) transcribeFallback(ctx context.Context, buf *audio.Buffer, language string, chunkSeconds float64, turns []SpeakerTurn) ([]Segment, error) {
	rate := float64(buf.SampleRate)
	segments := make([]Segment, 0, 8)
	for _, span := range SegmentSpans(len(buf.Samples), buf.SampleRate, chunkSeconds) {
		seg, ok := e.transcribeRange(ctx, buf, float64(span.Start)/rate, float64(span.End)/rate, language, DefaultSpeaker)
		if ok {
			segments = append(segments, seg)
		}
	}

	if len(turns) > 0 {
		segments = AlignSpeakers(segments, turns)
		applyLabels(segments, speakerLabelsFromTurns(turns))
		if e.filter != nil {
			segments = e.filter.Filter(segments)
		}
		return MergeConsecutive(segments), nil
	}
	if e.filter != nil {
		segments = e.filter.Filter(segments)
	}
	return segments, nil
}

// transcribeRange sends buf[start,end) seconds to the transcriber and
// builds the segment. False means the chunk was skipped (error or silence).
func (e *Engine) transcribeRange(ctx context.Context, buf *audio.Buffer, start, end float64, language, speaker string) (Segment, bool) {
	rate := float64(buf.SampleRate)
	chunk := buf.Slice(int(start*rate), int(end*rate))
	if len(chunk.Samples) == 0 {
		return Segment{}, false
	}

	began := time.Now()
	text, err := e.transcriber.TranscribeChunk(ctx, chunk, language)
	elapsed := time.Since(began).Milliseconds()
	if err != nil {
		logger.LogChunkProcessing(e.log, "transcribe", "chunk_failed", start, end, elapsed, err.Error())
		return Segment{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Segment{}, false
	}
	logger.LogChunkProcessing(e.log, "transcribe", "chunk_done", start, end, elapsed, "")
	return Segment{
		Start:   round2(start),
		End:     round2(end),
		Text:    text,
		Speaker: speaker,
	}, true
}
