package main

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"pixelripper/pkg/auth"
	"pixelripper/pkg/config"
)

func newHeadersCommand(global *globalOptions) *cobra.Command {
	headersCmd := &cobra.Command{
		Use:   "headers",
		Short: "Manage headers stored per host",
		Long: `Manage request headers stored per host, such as a session cookie for a
gallery that requires a login.

Headers are stored in the system keychain when available and otherwise in an
encrypted file. They are sent only to the host they were saved for, and
--extra_headers overrides them.`,
	}

	openManager := func(cmd *cobra.Command) (*auth.Manager, error) {
		cfg, err := config.Load(global.configFile, global.flagMap(cmd))
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		manager, err := auth.NewManager(cfg.Headers)
		if err != nil {
			return nil, fmt.Errorf("failed to open header store: %w", err)
		}
		return manager, nil
	}

	setCmd := &cobra.Command{
		Use:   "set <host> <name> [value]",
		Short: "Store a header for a host",
		Long: `Store a header for a host. Other headers already stored for the host are kept.
When the value is omitted it is read from standard input without echo.`,
		Example: `  pixelripper headers set gallery.example Cookie
  pixelripper headers set gallery.example Referer https://gallery.example/`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := openManager(cmd)
			if err != nil {
				return err
			}

			host, name := auth.NormalizeHost(args[0]), args[1]
			var value string
			if len(args) == 3 {
				value = args[2]
			} else {
				value, err = auth.ReadSecret(fmt.Sprintf("Value for %s on %s: ", name, host), cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}
			if value == "" {
				return fmt.Errorf("empty value for %s", name)
			}

			entry := &auth.HostHeaders{Host: host, Headers: map[string]string{}}
			if existing, err := manager.Retrieve(host); err == nil {
				entry = existing
			}
			entry.Headers[name] = value

			if err := manager.Store(entry); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s for %s\n", name, host)
			return nil
		},
	}

	var reveal bool
	showCmd := &cobra.Command{
		Use:   "show [host]",
		Short: "List stored headers",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := openManager(cmd)
			if err != nil {
				return err
			}

			var entries []*auth.HostHeaders
			if len(args) == 1 {
				entry, err := manager.Retrieve(args[0])
				if err != nil {
					return err
				}
				entries = append(entries, entry)
			} else if entries, err = manager.List(); err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stored headers")
				return nil
			}

			tw := table.NewWriter()
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Host", "Header", "Value", "Updated"})
			for _, entry := range entries {
				if !reveal {
					entry = auth.Sanitize(entry)
				}
				names := make([]string, 0, len(entry.Headers))
				for name := range entry.Headers {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					tw.AppendRow(table.Row{entry.Host, name, entry.Headers[name], entry.LastModified.Format("2006-01-02 15:04")})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), tw.Render())
			return nil
		},
	}
	showCmd.Flags().BoolVar(&reveal, "reveal", false, "print values unmasked")

	deleteCmd := &cobra.Command{
		Use:   "delete <host>",
		Short: "Remove every header stored for a host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := openManager(cmd)
			if err != nil {
				return err
			}
			if err := manager.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted headers for %s\n", auth.NormalizeHost(args[0]))
			return nil
		},
	}

	guideCmd := &cobra.Command{
		Use:   "guide [host]",
		Short: "Explain how to copy headers out of a browser",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			host := ""
			if len(args) == 1 {
				host = auth.NormalizeHost(args[0])
			}
			auth.WriteCookieGuide(cmd.OutOrStdout(), host)
		},
	}

	headersCmd.AddCommand(setCmd, showCmd, deleteCmd, guideCmd)
	return headersCmd
}
