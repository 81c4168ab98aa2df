// main.go
package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"picklist/config"
)

//go:embed static
var staticFiles embed.FS

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "picklist",
		Short:        "Warehouse picklist tracker",
		Version:      Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfgPath, serveOptions{})
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFile, "config file")

	root.AddCommand(serveCmd(&cfgPath))
	root.AddCommand(exportCmd(&cfgPath))
	root.AddCommand(pingCmd(&cfgPath))
	root.AddCommand(printCmd(&cfgPath))
	return root
}

func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "windows":
		cmd = "rundll32"
		args = []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		cmd = "open"
		args = []string{url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}
	return exec.Command(cmd, args...).Start()
}
