package asr

// AlignSpeakers assigns each segment the raw speaker id of the diarization
// turn it overlaps most with. A later turn must strictly exceed the current
// best overlap to win, so ties go to the earliest turn in input order.
// Segments with zero overlap against every turn keep DefaultSpeaker.
//
// The returned segments carry raw ids; callers relabel via SpeakerLabels.
func AlignSpeakers(segments []Segment, turns []SpeakerTurn) []Segment {
	out := make([]Segment, len(segments))
	for i, seg := range segments {
		best := DefaultSpeaker
		bestOverlap := 0.0
		for _, turn := range turns {
			overlap := overlapSeconds(seg.Start, seg.End, turn.Start, turn.End)
			if overlap > bestOverlap {
				bestOverlap = overlap
				best = turn.Speaker
			}
		}
		seg.Speaker = best
		out[i] = seg
	}
	return out
}

// overlapSeconds returns the length of the intersection of [aStart,aEnd)
// and [bStart,bEnd), or 0 when the intervals are disjoint.
func overlapSeconds(aStart, aEnd, bStart, bEnd float64) float64 {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	if end <= start {
		return 0
	}
	return end - start
}
