package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"flatdb/cmd/web"

	"github.com/spf13/cobra"
)

var execCmd = &cobra.Command{
	Use:   "exec STATEMENT",
	Short: "Run one statement, e.g. \"SELECT * FROM Users WHERE Age > 21\"",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Storage.Database != "" {
			if _, err := useDatabase(); err != nil {
				return err
			}
		}
		out, err := newExecutor().Run(strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printOutput(out)
	},
}

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Read statements from standard input, one per line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.InOrStdin())
	},
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve statements over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Storage.Database != "" {
			if _, err := useDatabase(); err != nil {
				return err
			}
		}
		return web.RunServer(web.New(session, newExecutor(), log), serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Address to listen on")

	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(serveCmd)
}

// runShell executes each non-empty line of r. Errors are reported and the
// shell carries on; "exit" or "quit" stops it.
func runShell(r io.Reader) error {
	if cfg.Storage.Database != "" {
		if _, err := useDatabase(); err != nil {
			return err
		}
	}
	exec := newExecutor()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch strings.ToLower(strings.TrimSuffix(line, ";")) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		out, err := exec.Run(line)
		if err != nil {
			fmt.Fprintln(stdout, "error:", err)
			continue
		}
		if err := printOutput(out); err != nil {
			return err
		}
	}
	return sc.Err()
}
