package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leicam1995/teste-api-ebac/internal/httpclient"
	"github.com/leicam1995/teste-api-ebac/internal/suites"
)

// SuiteInfo describes one suite for the list command.
type SuiteInfo struct {
	Name     string   `json:"name"`
	BaseURL  string   `json:"base_url"`
	Strategy string   `json:"strategy"`
	Login    bool     `json:"login"`
	Cases    []string `json:"cases"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List suites and their cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", format, ValidFormats))
			}
			cfg, _, err := rootOpts.load(cmd)
			if err != nil {
				return err
			}

			var infos []SuiteInfo
			for _, name := range suites.Names() {
				svc, err := cfg.Service(name)
				if err != nil {
					return WrapExitError(ExitCommandError, "resolving service", err)
				}
				strategy := suites.TargetStrategy(svc.Strategy)
				if strategy == "" {
					strategy = suites.DefaultStrategy(name)
				}
				s, err := suites.Build(name, suites.Config{Client: httpclient.New(svc.BaseURL), Strategy: strategy})
				if err != nil {
					return err
				}
				info := SuiteInfo{Name: name, BaseURL: svc.BaseURL, Strategy: string(strategy), Login: s.Login != nil}
				for _, c := range s.Cases {
					info.Cases = append(info.Cases, c.Name)
				}
				infos = append(infos, info)
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\tstrategy=%s\tlogin=%t\n", info.Name, info.BaseURL, info.Strategy, info.Login)
				for _, c := range info.Cases {
					fmt.Fprintf(tw, "  %s\t\t\t\n", c)
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (text|json)")
	return cmd
}
