package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
)

// ConvertToWAV transcodes any ffmpeg-readable input (mp3 in practice) to
// mono 16kHz WAV in a temp file and returns its path. The caller owns the
// file and must remove it.
func ConvertToWAV(ctx context.Context, inputPath string) (string, error) {
	tmp, err := os.CreateTemp("", "asr-convert-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	outputPath := tmp.Name()
	tmp.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-ar", fmt.Sprintf("%d", TargetSampleRate),
		"-ac", "1",
		"-f", "wav",
		outputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg convert failed: %w (stderr=%s)", err, stderr.String())
	}
	return outputPath, nil
}
