package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "asr",
		Short:   "ASR CLI - 语音转写服务命令行工具",
		Long:    "通过命令行直接调用转写服务 HTTP API，与 MCP Server 工具 1:1 对应。",
		Version: version,
	}

	// 添加全局标志
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newTranscribeCmd())
	rootCmd.AddCommand(newStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
