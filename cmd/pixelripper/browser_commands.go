package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pixelripper/pkg/fetch"
)

func newBrowserCommand() *cobra.Command {
	browserCmd := &cobra.Command{
		Use:   "browser",
		Short: "Manage the browsers used by --selenium",
	}

	installCmd := &cobra.Command{
		Use:   "install [firefox|webkit]...",
		Short: "Download the Playwright driver and browser builds",
		Long: `Download the Playwright driver and the named browser builds (firefox when
none is given). Chrome, Chromium and Edge are taken from the system and need
no download.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"firefox"}
			}
			if err := fetch.InstallDriver(args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Installed %v\n", args)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the supported browser engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range fetch.Engines() {
				driver := "devtools (system browser)"
				if fetch.IsPlaywrightEngine(name) {
					driver = "playwright"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s\n", name, driver)
			}
			return nil
		},
	}

	browserCmd.AddCommand(installCmd, listCmd)
	return browserCmd
}
