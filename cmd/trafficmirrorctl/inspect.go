package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	interceptor "github.com/plt-oss/traffic-interceptor"
	"github.com/plt-oss/traffic-interceptor/internal/config"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Interactive shell: issue GET requests through the interceptor and watch admission decisions",
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	i, err := interceptor.New(cfg.ToOptions())
	if err != nil {
		return fmt.Errorf("failed to construct interceptor: %w", err)
	}

	client := &http.Client{
		Transport: i.Transport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	rl, err := readline.New("trafficmirrorctl> ")
	if err != nil {
		return fmt.Errorf("failed to start readline: %w", err)
	}
	defer rl.Close()

	fmt.Println("Enter a URL to GET through the interceptor, 'stats' for counters, or Ctrl-D to quit.")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "stats":
			printStats(i.Stats())
		default:
			issueGet(client, line)
		}
	}
}

func issueGet(client *http.Client, target string) {
	resp, err := client.Get(target)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		fmt.Printf("status=%d (body read error: %v)\n", resp.StatusCode, err)
		return
	}
	fmt.Printf("status=%d bytes=%d\n", resp.StatusCode, n)
}

func printStats(s interceptor.Stats) {
	fmt.Printf("admitted=%d dropped=%d mirrored_body=%d mirrored_meta_only=%d mirror_errors=%d\n",
		s.Admitted, s.Dropped, s.MirroredBody, s.MirroredMetaOnly, s.MirrorErrors)
}
