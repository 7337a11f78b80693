package asr

// MergeConsecutive collapses runs of adjacent segments that share a speaker
// into single segments. Text is joined with a space, the end time extends to
// the last segment of the run. Input order is preserved and the input slice
// is not modified. Empty input yields an empty, non-nil slice so callers can
// serialize the result as an empty transcript.
func MergeConsecutive(segments []Segment) []Segment {
	if len(segments) == 0 {
		return []Segment{}
	}
	merged := make([]Segment, 0, len(segments))
	cur := segments[0]
	for _, seg := range segments[1:] {
		if seg.Speaker == cur.Speaker {
			cur.End = seg.End
			if seg.Text != "" {
				if cur.Text != "" {
					cur.Text += " " + seg.Text
				} else {
					cur.Text = seg.Text
				}
			}
			continue
		}
		merged = append(merged, cur)
		cur = seg
	}
	merged = append(merged, cur)
	return merged
}
