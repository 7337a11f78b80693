package diarize

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/speechkit/asr-service/pkg/asr"
)

// ScriptDiarizer runs the pyannote pipeline as an external python3 process.
// The script takes --input <path> [--device cpu|cuda] and prints the
// diarization payload to stdout.
type ScriptDiarizer struct {
	scriptPath string
	device     string
	hfToken    string
	offline    bool
}

// ScriptConfig configures the external pyannote invocation.
type ScriptConfig struct {
	// ScriptPath is the diarization script location. Required.
	ScriptPath string
	// Device selects the torch device, "cpu" when empty.
	Device string
	// HFToken is forwarded as HUGGINGFACE_TOKEN for gated model downloads.
	HFToken string
	// Offline sets HF_HUB_OFFLINE=1 so the pipeline only uses cached models.
	Offline bool
}

// NewScriptDiarizer validates that the script exists and returns the
// diarizer.
func NewScriptDiarizer(cfg ScriptConfig) (*ScriptDiarizer, error) {
	if cfg.ScriptPath == "" {
		return nil, fmt.Errorf("diarization script path is empty")
	}
	if _, err := os.Stat(cfg.ScriptPath); err != nil {
		return nil, fmt.Errorf("diarization script missing: %w", err)
	}
	device := cfg.Device
	if device == "" {
		device = "cpu"
	}
	return &ScriptDiarizer{
		scriptPath: cfg.ScriptPath,
		device:     device,
		hfToken:    cfg.HFToken,
		offline:    cfg.Offline,
	}, nil
}

// Diarize executes the script and parses its stdout. stderr is kept for
// error reporting only; noisy torch warnings on stdout are tolerated by
// the payload parser.
func (d *ScriptDiarizer) Diarize(ctx context.Context, audioPath string) ([]asr.SpeakerTurn, error) {
	args := []string{d.scriptPath, "--input", audioPath, "--device", d.device}
	if d.offline {
		args = append(args, "--offline")
	}
	cmd := exec.CommandContext(ctx, "python3", args...)

	env := os.Environ()
	if d.hfToken != "" {
		env = append(env, "HUGGINGFACE_TOKEN="+d.hfToken)
	}
	if d.offline {
		env = append(env, "HF_HUB_OFFLINE=1")
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("diarization script failed: %w (stderr=%s)", err, stderr.String())
	}
	return parsePayload(stdout.Bytes())
}

// Name returns the backend identifier.
func (d *ScriptDiarizer) Name() string {
	return "pyannote-script"
}
