package main

import (
	"fmt"
	"io"
	"time"

	"github.com/speechkit/asr-service/pkg/asr"
)

// secondsToDuration 把 API 的浮点秒转成 time.Duration
func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

func formatTimestamp(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

func formatTimestampSrt(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// WriteSegmentText 输出 [start --> end] [SPEAKER] text 格式
func WriteSegmentText(w io.Writer, s asr.Segment) {
	startStr := formatTimestamp(secondsToDuration(s.Start))
	endStr := formatTimestamp(secondsToDuration(s.End))
	speaker := ""
	if s.Speaker != "" {
		speaker = fmt.Sprintf(" [%s]", s.Speaker)
	}
	fmt.Fprintf(w, "[%s --> %s]%s %s\n", startStr, endStr, speaker, s.Text)
}

// WriteSegmentSrt 输出 SRT 字幕块 (index 从 0 开始, 编号 +1)
func WriteSegmentSrt(w io.Writer, index int, s asr.Segment) {
	fmt.Fprintf(w, "%d\n", index+1)
	fmt.Fprintf(w, "%s --> %s\n", formatTimestampSrt(secondsToDuration(s.Start)), formatTimestampSrt(secondsToDuration(s.End)))
	fmt.Fprintf(w, "%s\n\n", srtLine(s))
}

// WriteSegmentVtt 输出 WebVTT cue
func WriteSegmentVtt(w io.Writer, s asr.Segment) {
	fmt.Fprintf(w, "%s --> %s\n", formatTimestamp(secondsToDuration(s.Start)), formatTimestamp(secondsToDuration(s.End)))
	fmt.Fprintf(w, "%s\n\n", srtLine(s))
}

func srtLine(s asr.Segment) string {
	if s.Speaker != "" {
		return fmt.Sprintf("[%s] %s", s.Speaker, s.Text)
	}
	return s.Text
}

// RenderSegments 按指定格式渲染完整转写结果
func RenderSegments(w io.Writer, format string, segments []asr.Segment) error {
	switch format {
	case "text":
		for _, s := range segments {
			WriteSegmentText(w, s)
		}
	case "srt":
		for i, s := range segments {
			WriteSegmentSrt(w, i, s)
		}
	case "vtt":
		fmt.Fprintf(w, "WEBVTT\n\n")
		for _, s := range segments {
			WriteSegmentVtt(w, s)
		}
	default:
		return fmt.Errorf("unsupported format: %s (valid: text / json / srt / vtt)", format)
	}
	return nil
}
