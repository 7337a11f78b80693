package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/speechkit/asr-service/pkg/asr"
)

type transcribeResult struct {
	Language string        `json:"language"`
	Segments []asr.Segment `json:"segments"`
}

func newTranscribeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "transcribe",
		Short: "转写音频文件 (本地文件或远程 URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			client := NewAPIClient(cfg)

			filePath, _ := cmd.Flags().GetString("file")
			audioURL, _ := cmd.Flags().GetString("audio-url")
			if filePath == "" && audioURL == "" {
				return fmt.Errorf("either --file or --audio-url is required")
			}

			language, _ := cmd.Flags().GetString("language")
			chunkLength, _ := cmd.Flags().GetString("chunk-length")
			fields := map[string]string{
				"language":     language,
				"chunk_length": chunkLength,
				"audio_url":    audioURL,
			}

			resp, err := client.PostMultipart("/transcribe", filePath, fields)
			if err != nil {
				return err
			}

			if cfg.Output == "json" {
				return printJSON(resp)
			}

			var result transcribeResult
			if err := json.Unmarshal(resp, &result); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			return RenderSegments(os.Stdout, cfg.Output, result.Segments)
		},
	}
	c.Flags().StringP("file", "f", "", "本地音频文件 (.wav / .mp3)")
	c.Flags().String("audio-url", "", "远程音频 URL (http/https)")
	c.Flags().StringP("language", "l", "", "语言代码 (ISO 639-1, 默认由服务端决定)")
	c.Flags().String("chunk-length", "", "分块时长（秒）")
	return c
}
