package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/synctree/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved sync configuration",
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("sync.next_query_tag_start = %d\n", cfg.Sync.NextQueryTagStart)
	fmt.Printf("sync.listen_timeout_seconds = %d\n", cfg.Sync.ListenTimeoutSecs)
	fmt.Printf("sync.hash_check_enabled = %t\n", cfg.Sync.HashCheckEnabled)
	fmt.Printf("sync.log_theme = %s\n", cfg.Sync.LogTheme)
	return nil
}
