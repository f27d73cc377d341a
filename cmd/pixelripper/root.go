package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configFile string
	logLevel   string
	quiet      bool
}

// flagMap returns the persistent flags the user actually set, keyed the way
// config.MergeCommandLineFlags expects
func (g *globalOptions) flagMap(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	if cmd.Flags().Changed("log-level") {
		flags["log-level"] = g.logLevel
	}
	if g.quiet {
		flags["quiet"] = true
	}
	return flags
}

func newRootCommand() *cobra.Command {
	global := &globalOptions{}
	opts := &ripOptions{}

	rootCmd := &cobra.Command{
		Use:   "pixelripper [flags] <url>",
		Short: "Download every image, video and audio file linked from a web page",
		Long: `pixelripper fetches a web page, finds the media it links to and saves it
into images/, videos/ and audio/ under the output path.

Pages that load content while scrolling can be rendered in a scripted browser
with --selenium. Firefox and WebKit run through a Playwright driver that
'pixelripper browser install' downloads; Chrome, Chromium and Edge are used
from the system. Headers saved with 'pixelripper headers set' are sent to the
host they belong to.`,
		Example: `  # Rip a gallery into ./gallery.example
  pixelripper https://www.gallery.example/album/42

  # Render with a visible Chrome window and pass a cookie
  pixelripper -s -nh -b chrome -eh Cookie:sid=abc https://gallery.example/feed

  # Choose the output folder
  pixelripper -o ~/Pictures/album https://gallery.example/album/42`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRip(cmd, global, opts, args[0])
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&global.configFile, "config", "c", "", "config file (default is ~/.config/pixelripper/config.yaml)")
	pf.StringVar(&global.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVarP(&global.quiet, "quiet", "q", false, "suppress logs and progress except errors")

	f := rootCmd.Flags()
	f.BoolVarP(&opts.selenium, "selenium", "s", false, "render the page in a scripted browser")
	f.BoolVar(&opts.noHeadless, "no_headless", false, "show the browser window (-nh)")
	f.StringVarP(&opts.browser, "browser", "b", "firefox", "browser engine: firefox, webkit, chrome, chromium, edge")
	f.StringVarP(&opts.outputPath, "output_path", "o", "", "output folder (default ./<host without www.>)")
	f.StringArrayVar(&opts.extraHeaders, "extra_headers", nil, "extra request headers as key:value tokens (-eh)")
	f.BoolVar(&opts.strict, "strict", false, "drop repeated links within a category")
	f.IntVar(&opts.rateLimit, "rate-limit", 0, "max requests per minute to any one host while downloading (0 = unlimited)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")

	rootCmd.SetVersionTemplate(`pixelripper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newHeadersCommand(global))
	rootCmd.AddCommand(newConfigCommand(global))
	rootCmd.AddCommand(newBrowserCommand())

	return rootCmd
}
