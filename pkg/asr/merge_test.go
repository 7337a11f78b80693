package asr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConsecutive(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 2, Text: "bonjour", Speaker: "SPEAKER0"},
		{Start: 2, End: 4, Text: "à tous", Speaker: "SPEAKER0"},
		{Start: 4, End: 6, Text: "merci", Speaker: "SPEAKER1"},
		{Start: 6, End: 8, Text: "au revoir", Speaker: "SPEAKER0"},
	}
	merged := MergeConsecutive(segments)
	require.Len(t, merged, 3)

	assert.Equal(t, Segment{Start: 0, End: 4, Text: "bonjour à tous", Speaker: "SPEAKER0"}, merged[0])
	assert.Equal(t, Segment{Start: 4, End: 6, Text: "merci", Speaker: "SPEAKER1"}, merged[1])
	// 非相邻的同说话人不合并
	assert.Equal(t, Segment{Start: 6, End: 8, Text: "au revoir", Speaker: "SPEAKER0"}, merged[2])
}

func TestMergeConsecutiveIdempotent(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1, Text: "a", Speaker: "SPEAKER0"},
		{Start: 1, End: 2, Text: "b", Speaker: "SPEAKER0"},
		{Start: 2, End: 3, Text: "c", Speaker: "SPEAKER1"},
	}
	once := MergeConsecutive(segments)
	twice := MergeConsecutive(once)
	assert.Equal(t, once, twice)
}

func TestMergeConsecutiveSingleSpeakerCollapses(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 30, Text: "part one", Speaker: "SPEAKER0"},
		{Start: 30, End: 60, Text: "part two", Speaker: "SPEAKER0"},
	}
	merged := MergeConsecutive(segments)
	require.Len(t, merged, 1)
	assert.Equal(t, 0.0, merged[0].Start)
	assert.Equal(t, 60.0, merged[0].End)
	assert.Equal(t, "part one part two", merged[0].Text)
}

func TestMergeConsecutiveEmptyInput(t *testing.T) {
	// 空输入得到可序列化为 [] 的非 nil 空切片
	for _, in := range [][]Segment{nil, {}} {
		merged := MergeConsecutive(in)
		assert.NotNil(t, merged)
		assert.Empty(t, merged)
	}
}

func TestMergeConsecutiveDoesNotMutateInput(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1, Text: "a", Speaker: "s"},
		{Start: 1, End: 2, Text: "b", Speaker: "s"},
	}
	_ = MergeConsecutive(segments)
	assert.Equal(t, "a", segments[0].Text)
	assert.Equal(t, 1.0, segments[0].End)
}

func TestMergeConsecutiveSkipsEmptyTextJoin(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1, Text: "", Speaker: "s"},
		{Start: 1, End: 2, Text: "hello", Speaker: "s"},
	}
	merged := MergeConsecutive(segments)
	require.Len(t, merged, 1)
	assert.Equal(t, "hello", merged[0].Text)
}
