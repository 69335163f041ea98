package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plt-oss/traffic-interceptor/internal/config"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Load and validate a config file without starting anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}
		fmt.Printf("config OK: inspector=%s bloom(size=%d, error_rate=%.4f) max_response_size=%d\n",
			cfg.TrafficInspector.URL, cfg.BloomFilter.Size, cfg.BloomFilter.ErrorRate, cfg.MaxResponseSize)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateConfigCmd)
}
