package asr

import (
	"fmt"
	"sort"
)

// SpeakerLabels maps the diarizer's opaque speaker ids to the stable
// public labels SPEAKER0, SPEAKER1, ... Ranks are assigned by sorting the
// unique raw ids lexicographically, so the same audio always yields the
// same labeling regardless of turn order.
func SpeakerLabels(segments []Segment) map[string]string {
	ids := make([]string, 0, len(segments))
	for _, seg := range segments {
		ids = append(ids, seg.Speaker)
	}
	return labelRanks(ids)
}

// speakerLabelsFromTurns builds the same lexicographic mapping from raw
// turn ids. Used on the aligned-fallback path so that segments left at
// DefaultSpeaker (zero overlap) are not themselves remapped.
func speakerLabelsFromTurns(turns []SpeakerTurn) map[string]string {
	ids := make([]string, 0, len(turns))
	for _, t := range turns {
		ids = append(ids, t.Speaker)
	}
	return labelRanks(ids)
}

// labelRanks assigns SPEAKER{rank} labels by 0-based lexicographic rank
// over the unique, non-empty raw ids. This is the single ordering rule for
// every labeling path.
func labelRanks(rawIDs []string) map[string]string {
	seen := make(map[string]struct{})
	for _, id := range rawIDs {
		if id != "" {
			seen[id] = struct{}{}
		}
	}
	unique := make([]string, 0, len(seen))
	for id := range seen {
		unique = append(unique, id)
	}
	sort.Strings(unique)

	labels := make(map[string]string, len(unique))
	for i, id := range unique {
		labels[id] = fmt.Sprintf("SPEAKER%d", i)
	}
	return labels
}

// applyLabels rewrites raw speaker ids in place using the given mapping.
// Ids without a mapping entry are left untouched.
func applyLabels(segments []Segment, labels map[string]string) {
	for i := range segments {
		if mapped, ok := labels[segments[i].Speaker]; ok {
			segments[i].Speaker = mapped
		}
	}
}
