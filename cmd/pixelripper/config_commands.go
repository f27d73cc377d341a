package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pixelripper/pkg/config"
)

const exampleConfig = `# pixelripper configuration
#
# Every option can also be set with a PIXELRIPPER_ environment variable,
# for example PIXELRIPPER_OUTPUT_DIR or PIXELRIPPER_LOG_LEVEL.
# Command line flags take precedence over both.

fetch:
  # Render pages in a scripted browser instead of a plain GET
  use_browser: false
  # firefox or webkit (run 'pixelripper browser install' once),
  # or chrome, chromium, edge from the system
  browser: firefox
  headless: true
  timeout: 30s
  # Pause after the page loads and after each scroll
  initial_wait: 1s
  scroll_wait: 1s
  # Stop scrolling after this many rounds even if the page keeps growing
  max_scrolls: 50

download:
  timeout: 60s
  # Per-host politeness limit; 0 disables it
  requests_per_minute: 0
  # Appended to saved files whose URL has no extension
  image_extension: .jpg
  video_extension: .mp4
  audio_extension: .mp3

classifier:
  # Drop repeated links within a category
  strict: false
  # Replacement extension lists, one per line
  video_extensions_file: ""
  audio_extensions_file: ""

output:
  # Empty means ./<host without www.>
  base_directory: ""

headers:
  use_keyring: true
  # Encrypted fallback store, default ~/.pixelripper
  # store_dir: /path/to/dir

logging:
  # debug, info, warn, error
  level: info
  # JSON log file; empty logs to the terminal
  file: ""

metrics:
  # Prometheus textfile written after each run
  textfile: ""
`

func newConfigCommand(global *globalOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage pixelripper configuration files.

Configuration is merged from, highest priority first:
  - Command line flags
  - Environment variables (PIXELRIPPER_*)
  - .env files
  - Configuration file
  - Default values`,
	}

	var path string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write an example configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := path
			if target == "" {
				target = global.configFile
			}
			if target == "" {
				target = config.DefaultPath()
			}

			if _, err := os.Stat(target); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", target)
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.WriteFile(target, []byte(exampleConfig), 0600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote example configuration to %s\n", target)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "where to write the file (default ~/.config/pixelripper/config.yaml)")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(global.configFile, global.flagMap(cmd))
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to format configuration: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}
