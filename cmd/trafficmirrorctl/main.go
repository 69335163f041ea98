// Command trafficmirrorctl is a small operator CLI around the traffic
// interceptor library: it can run a demo HTTP proxy with the interceptor
// wired in, validate a config file without starting anything, and drive
// an interactive REPL against a running interceptor for manual poking.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "trafficmirrorctl",
	Short: "Operate a traffic-interceptor instance",
	Long: `trafficmirrorctl loads a YAML config describing a Traffic Inspector
collector and admission rules, and either runs a demo reverse proxy with the
interceptor wired into its transport, validates a config file, or opens an
interactive inspection shell.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to a YAML config file (defaults built in if omitted)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
