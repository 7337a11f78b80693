package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "auth",
		Short: "获取 API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			client := NewAPIClient(cfg)

			clientID, _ := cmd.Flags().GetString("client-id")
			clientSecret, _ := cmd.Flags().GetString("client-secret")

			resp, err := client.PostJSON("/auth/token", map[string]string{
				"client_id":     clientID,
				"client_secret": clientSecret,
			})
			if err != nil {
				return err
			}

			if cfg.Output == "json" {
				return printJSON(resp)
			}

			var result struct {
				AccessToken string `json:"access_token"`
				ExpiresIn   int64  `json:"expires_in"`
			}
			if err := json.Unmarshal(resp, &result); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}
			fmt.Println(result.AccessToken)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires in %d seconds; export ASR_TOKEN to use it\n", result.ExpiresIn)
			return nil
		},
	}
	c.Flags().String("client-id", "asr-cli", "客户端标识")
	c.Flags().String("client-secret", "", "客户端密钥 (生产环境必填)")
	return c
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "查看服务端各后端可用性",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			client := NewAPIClient(cfg)
			resp, err := client.Get("/status")
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}
