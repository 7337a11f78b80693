package asr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechkit/asr-service/pkg/audio"
)

// stubTranscriber 按调用顺序返回预设文本, 便于断言分块顺序
type stubTranscriber struct {
	mu    sync.Mutex
	calls int
	fn    func(call int, buf *audio.Buffer, language string) (string, error)
}

func (s *stubTranscriber) TranscribeChunk(_ context.Context, buf *audio.Buffer, language string) (string, error) {
	s.mu.Lock()
	call := s.calls
	s.calls++
	s.mu.Unlock()
	return s.fn(call, buf, language)
}

type stubDiarizer struct {
	turns    []SpeakerTurn
	err      error
	calls    int
	lastPath string
}

func (s *stubDiarizer) Diarize(_ context.Context, audioPath string) ([]SpeakerTurn, error) {
	s.calls++
	s.lastPath = audioPath
	return s.turns, s.err
}

// testBuffer 用低采样率构造指定时长的缓冲, 减小测试内存
func testBuffer(seconds float64) *audio.Buffer {
	rate := 100
	return &audio.Buffer{
		Samples:    make([]float32, int(seconds*float64(rate))),
		SampleRate: rate,
	}
}

func sequentialTexts(texts ...string) *stubTranscriber {
	return &stubTranscriber{fn: func(call int, _ *audio.Buffer, _ string) (string, error) {
		if call < len(texts) {
			return texts[call], nil
		}
		return fmt.Sprintf("chunk %d", call), nil
	}}
}

func TestTranscribeFallbackFixedChunks(t *testing.T) {
	tr := sequentialTexts("un", "deux", "trois")
	engine := NewEngine(tr)

	segments, err := engine.Transcribe(context.Background(), testBuffer(90), "", "fr", 30)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, Segment{Start: 0, End: 30, Text: "un", Speaker: DefaultSpeaker}, segments[0])
	assert.Equal(t, Segment{Start: 30, End: 60, Text: "deux", Speaker: DefaultSpeaker}, segments[1])
	assert.Equal(t, Segment{Start: 60, End: 90, Text: "trois", Speaker: DefaultSpeaker}, segments[2])
}

func TestTranscribeFallbackWhenNoAudioPath(t *testing.T) {
	d := &stubDiarizer{turns: []SpeakerTurn{{Start: 0, End: 5, Speaker: "raw_x"}}}
	engine := NewEngine(sequentialTexts("texte"), WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(5), "", "fr", 30)
	require.NoError(t, err)
	// 没有源文件时把缓冲编码为临时 WAV, 分离一次后对齐
	assert.Equal(t, 1, d.calls)
	assert.True(t, strings.HasSuffix(d.lastPath, ".wav"), "diarizer got %q", d.lastPath)
	require.Len(t, segments, 1)
	assert.Equal(t, "SPEAKER0", segments[0].Speaker)
}

func TestTranscribeFallbackNoAudioPathDiarizerError(t *testing.T) {
	d := &stubDiarizer{err: errors.New("pipeline crashed")}
	engine := NewEngine(sequentialTexts("texte"), WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(5), "", "fr", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, d.calls)
	require.Len(t, segments, 1)
	assert.Equal(t, DefaultSpeaker, segments[0].Speaker)
}

func TestTranscribeFallbackOnDiarizationError(t *testing.T) {
	d := &stubDiarizer{err: errors.New("pipeline crashed")}
	engine := NewEngine(sequentialTexts("a", "b"), WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(60), "/tmp/in.wav", "fr", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, d.calls)
	require.Len(t, segments, 2)
	for _, seg := range segments {
		assert.Equal(t, DefaultSpeaker, seg.Speaker)
	}
}

func TestTranscribeFallbackOnEmptyTurns(t *testing.T) {
	d := &stubDiarizer{turns: nil}
	engine := NewEngine(sequentialTexts("a"), WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(10), "/tmp/in.wav", "fr", 30)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, DefaultSpeaker, segments[0].Speaker)
}

func TestTranscribePartialChunkFailure(t *testing.T) {
	tr := &stubTranscriber{fn: func(call int, _ *audio.Buffer, _ string) (string, error) {
		if call == 1 {
			return "", errors.New("backend timeout")
		}
		return fmt.Sprintf("texte %d", call), nil
	}}
	engine := NewEngine(tr)

	segments, err := engine.Transcribe(context.Background(), testBuffer(90), "", "fr", 30)
	require.NoError(t, err)
	// 第二块失败被跳过, 其余保留
	require.Len(t, segments, 2)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 60.0, segments[1].Start)
}

func TestTranscribeSkipsEmptyText(t *testing.T) {
	tr := sequentialTexts("parole", "   ", "suite")
	engine := NewEngine(tr)

	segments, err := engine.Transcribe(context.Background(), testBuffer(90), "", "fr", 30)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "parole", segments[0].Text)
	assert.Equal(t, "suite", segments[1].Text)
}

func TestTranscribeDiarizedRelabelsAndSorts(t *testing.T) {
	d := &stubDiarizer{turns: []SpeakerTurn{
		{Start: 4, End: 8, Speaker: "spk_b"},
		{Start: 0, End: 4, Speaker: "spk_a"},
	}}
	engine := NewEngine(sequentialTexts("deuxième", "premier"), WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(10), "/tmp/in.wav", "fr", 30)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	// 按起始时间排序, 标签按原始 id 字典序分配
	assert.Equal(t, Segment{Start: 0, End: 4, Text: "premier", Speaker: "SPEAKER0"}, segments[0])
	assert.Equal(t, Segment{Start: 4, End: 8, Text: "deuxième", Speaker: "SPEAKER1"}, segments[1])
}

func TestTranscribeDiarizedClipsAndSkipsDegenerateTurns(t *testing.T) {
	d := &stubDiarizer{turns: []SpeakerTurn{
		{Start: -2, End: 3, Speaker: "spk"},  // clipped to [0,3)
		{Start: 5, End: 5, Speaker: "spk"},   // degenerate
		{Start: 7, End: 4, Speaker: "spk"},   // inverted
		{Start: 8, End: 99, Speaker: "spk2"}, // clipped to [8,10)
	}}
	engine := NewEngine(sequentialTexts("début", "fin"), WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(10), "/tmp/in.wav", "fr", 30)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 3.0, segments[0].End)
	assert.Equal(t, 8.0, segments[1].Start)
	assert.Equal(t, 10.0, segments[1].End)
}

func TestTranscribeDiarizedChunksLongTurns(t *testing.T) {
	d := &stubDiarizer{turns: []SpeakerTurn{{Start: 0, End: 70, Speaker: "spk"}}}
	tr := sequentialTexts("un", "deux", "trois")
	engine := NewEngine(tr, WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(70), "/tmp/in.wav", "fr", 30)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.calls)

	// 同一说话人的相邻块合并回单段
	require.Len(t, segments, 1)
	assert.Equal(t, Segment{Start: 0, End: 70, Text: "un deux trois", Speaker: "SPEAKER0"}, segments[0])
}

func TestTranscribeDiarizedSingleSpeakerRoundTrip(t *testing.T) {
	d := &stubDiarizer{turns: []SpeakerTurn{
		{Start: 0, End: 5, Speaker: "only"},
		{Start: 5, End: 10, Speaker: "only"},
	}}
	engine := NewEngine(sequentialTexts("bonjour", "au revoir"), WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(10), "/tmp/in.wav", "fr", 30)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "SPEAKER0", segments[0].Speaker)
	assert.Equal(t, "bonjour au revoir", segments[0].Text)
}

func TestTranscribeChunkAlignmentStrategy(t *testing.T) {
	d := &stubDiarizer{turns: []SpeakerTurn{
		{Start: 0, End: 4, Speaker: "raw_a"},
		{Start: 4, End: 10, Speaker: "raw_b"},
	}}
	engine := NewEngine(sequentialTexts("tout le texte"), WithDiarizer(d), WithChunkAlignment())

	segments, err := engine.Transcribe(context.Background(), testBuffer(10), "/tmp/in.wav", "fr", 10)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	// [0,10) 与 raw_b 重叠 6s > raw_a 4s
	assert.Equal(t, "SPEAKER1", segments[0].Speaker)
}

func TestTranscribeDiarizedAllChunksEmpty(t *testing.T) {
	tr := &stubTranscriber{fn: func(int, *audio.Buffer, string) (string, error) {
		return "   ", nil
	}}
	d := &stubDiarizer{turns: []SpeakerTurn{{Start: 0, End: 10, Speaker: "A"}}}
	engine := NewEngine(tr, WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(10), "/tmp/in.wav", "fr", 30)
	require.NoError(t, err)
	// 全部切片为空文本时仍是合法的空转写, 序列化为 [] 而不是 null
	assert.Empty(t, segments)
	assert.NotNil(t, segments)
}

func TestTranscribeEmptyBuffer(t *testing.T) {
	engine := NewEngine(sequentialTexts())
	segments, err := engine.Transcribe(context.Background(), &audio.Buffer{SampleRate: 16000}, "", "fr", 30)
	require.NoError(t, err)
	assert.Empty(t, segments)
	assert.NotNil(t, segments)
}

func TestTranscribeValidation(t *testing.T) {
	engine := NewEngine(sequentialTexts())
	_, err := engine.Transcribe(context.Background(), testBuffer(10), "", "fr", 0)
	assert.ErrorIs(t, err, ErrInvalidChunk)

	_, err = engine.Transcribe(context.Background(), testBuffer(10), "", "fr", -5)
	assert.ErrorIs(t, err, ErrInvalidChunk)

	empty := NewEngine(nil)
	_, err = empty.Transcribe(context.Background(), testBuffer(10), "", "fr", 30)
	assert.ErrorIs(t, err, ErrNoTranscriber)
}

func TestTranscribeRoundsTimestamps(t *testing.T) {
	d := &stubDiarizer{turns: []SpeakerTurn{{Start: 1.23456, End: 4.56789, Speaker: "spk"}}}
	engine := NewEngine(sequentialTexts("texte"), WithDiarizer(d))

	segments, err := engine.Transcribe(context.Background(), testBuffer(10), "/tmp/in.wav", "fr", 30)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, 1.23, segments[0].Start)
	assert.Equal(t, 4.57, segments[0].End)
}

func TestTranscribeWithRepetitionFilter(t *testing.T) {
	tr := sequentialTexts(
		"sous-titrage société radio-canada",
		"sous-titrage société radio-canada",
		"passons au vif du sujet maintenant",
	)
	engine := NewEngine(tr, WithRepetitionFilter(NewRepetitionFilter(0)))

	segments, err := engine.Transcribe(context.Background(), testBuffer(90), "", "fr", 30)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "sous-titrage société radio-canada", segments[0].Text)
	assert.Equal(t, "passons au vif du sujet maintenant", segments[1].Text)
}
