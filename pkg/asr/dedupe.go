package asr

import (
	"strings"

	"github.com/go-dedup/simhash"
)

// DefaultRepetitionThreshold 定义相似度阈值：汉明距离<=8视为同一句话的重复
// Whisper 在静音或噪声段上会循环输出同一句话, 阈值设得比通用文本去重严格。
const DefaultRepetitionThreshold = 8

// minRepetitionRunes guards against false positives on very short texts
// ("ok", "yes"), whose simhash fingerprints are close to everything.
const minRepetitionRunes = 12

// RepetitionFilter drops consecutive same-speaker segments whose text is a
// near-duplicate of the previous one (decoder hallucination loops). Opt-in
// via EngineOption.
type RepetitionFilter struct {
	threshold int
}

// NewRepetitionFilter returns a filter with the given Hamming distance
// threshold; values <= 0 fall back to DefaultRepetitionThreshold.
func NewRepetitionFilter(threshold int) *RepetitionFilter {
	if threshold <= 0 {
		threshold = DefaultRepetitionThreshold
	}
	return &RepetitionFilter{threshold: threshold}
}

// Filter returns segments with hallucinated repeats removed. The first
// occurrence of a run always survives.
func (f *RepetitionFilter) Filter(segments []Segment) []Segment {
	if len(segments) < 2 {
		return segments
	}
	out := make([]Segment, 0, len(segments))
	out = append(out, segments[0])
	for _, seg := range segments[1:] {
		prev := out[len(out)-1]
		if seg.Speaker == prev.Speaker && f.similar(prev.Text, seg.Text) {
			continue
		}
		out = append(out, seg)
	}
	return out
}

func (f *RepetitionFilter) similar(a, b string) bool {
	if len([]rune(a)) < minRepetitionRunes || len([]rune(b)) < minRepetitionRunes {
		return a == b && a != ""
	}
	return hammingDistance(fingerprint(a), fingerprint(b)) <= f.threshold
}

// textFeatureSet 实现 simhash.FeatureSet 接口，用字符级bigram提取文本特征
type textFeatureSet struct {
	text string
}

func (t textFeatureSet) GetFeatures() []simhash.Feature {
	text := strings.TrimSpace(strings.ToLower(t.text))
	if text == "" {
		return []simhash.Feature{}
	}
	runes := []rune(text)
	features := make([]simhash.Feature, 0, len(runes))
	for i := 0; i < len(runes)-1; i++ {
		features = append(features, simhash.NewFeature([]byte(string(runes[i:i+2]))))
	}
	if len(runes) == 1 {
		features = append(features, simhash.NewFeature([]byte(text)))
	}
	return features
}

func fingerprint(text string) uint64 {
	sh := simhash.NewSimhash()
	return sh.GetSimhash(textFeatureSet{text: text})
}

// hammingDistance 计算两个指纹不同位的数量 (Brian Kernighan)
func hammingDistance(a, b uint64) int {
	x := a ^ b
	count := 0
	for x != 0 {
		count++
		x &= x - 1
	}
	return count
}
