package asr

// Span is a half-open chunk boundary [Start, End) in sample space.
type Span struct {
	Start int
	End   int
}

// SegmentSpans splits a buffer of totalSamples into consecutive chunks of
// at most chunkSeconds each. The spans cover every sample exactly once:
// no gaps, no overlaps, and the final span absorbs the remainder shorter
// than a full chunk.
func SegmentSpans(totalSamples, sampleRate int, chunkSeconds float64) []Span {
	if totalSamples <= 0 || sampleRate <= 0 || chunkSeconds <= 0 {
		return nil
	}
	chunkSamples := int(chunkSeconds * float64(sampleRate))
	if chunkSamples <= 0 {
		chunkSamples = 1
	}
	spans := make([]Span, 0, totalSamples/chunkSamples+1)
	for start := 0; start < totalSamples; start += chunkSamples {
		end := start + chunkSamples
		if end > totalSamples {
			end = totalSamples
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}
