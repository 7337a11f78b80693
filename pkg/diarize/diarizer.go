// Package diarize provides speaker diarization backends. Both the script
// and HTTP backends produce the same JSON payload shape, emitted by the
// pyannote pipeline:
//
//	{"segments": [{"start": 0.5, "end": 3.2, "speaker": "SPEAKER_00"}], "error": ""}
package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/speechkit/asr-service/pkg/asr"
)

// Diarizer segments an audio file by speaker.
type Diarizer interface {
	// Diarize returns raw speaker turns for the given file. Turn speaker
	// ids are backend-opaque; label normalization happens downstream.
	Diarize(ctx context.Context, audioPath string) ([]asr.SpeakerTurn, error)

	// Name returns the backend identifier for logs and /status.
	Name() string
}

type payload struct {
	Segments []asr.SpeakerTurn `json:"segments"`
	Error    string            `json:"error"`
}

// parsePayload decodes a diarization result, tolerating warning/log noise
// around the JSON object (pyannote and torch are chatty on stderr and it
// often ends up interleaved with stdout).
func parsePayload(data []byte) ([]asr.SpeakerTurn, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		jb, jerr := extractJSONWithSegments(data)
		if jerr != nil {
			return nil, fmt.Errorf("parse diarization output: %w", err)
		}
		if err := json.Unmarshal(jb, &p); err != nil {
			return nil, fmt.Errorf("parse extracted diarization output: %w", err)
		}
	}
	if p.Error != "" {
		return nil, fmt.Errorf("pyannote error: %s", p.Error)
	}
	return p.Segments, nil
}

// extractJSONWithSegments locates a JSON object containing a "segments"
// field within mixed output. It prefers the last occurrence of
// {"segments" and falls back to the last '{', then matches braces while
// respecting string escapes.
func extractJSONWithSegments(out []byte) ([]byte, error) {
	key := []byte("{\"segments\"")
	start := bytes.LastIndex(out, key)
	if start < 0 {
		start = bytes.LastIndex(out, []byte("{"))
		if start < 0 {
			return nil, errors.New("no JSON object found")
		}
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(out); i++ {
		c := out[i]
		if inString {
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return out[start : i+1], nil
			}
		}
	}
	return nil, errors.New("unterminated JSON object")
}
