// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rewardfarm/tomarket-harvester/internal/app"
)

type accountView struct {
	Name        string   `json:"name"`
	SessionFile string   `json:"session_file"`
	Proxy       string   `json:"proxy,omitempty"`
	Wallet      string   `json:"wallet,omitempty"`
	Cycles      []string `json:"cycles"`
}

func newAccountsCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the accounts the fleet would run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			accounts, err := app.LoadAccounts(cfg)
			if err != nil {
				return err
			}
			cycles := app.EnabledCycles(cfg)

			views := make([]accountView, 0, len(accounts))
			for _, acc := range accounts {
				views = append(views, accountView{
					Name:        acc.Name,
					SessionFile: acc.SessionFile,
					Proxy:       redactProxy(acc.Proxy),
					Wallet:      acc.WalletAddress,
					Cycles:      cycles,
				})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "accounts: %d\n", len(views))
			fmt.Fprintf(out, "cycles: %s\n", strings.Join(cycles, ", "))
			for _, v := range views {
				proxy := v.Proxy
				if proxy == "" {
					proxy = "direct"
				}
				fmt.Fprintf(out, "- %s (%s) via %s\n", v.Name, v.SessionFile, proxy)
			}

			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// redactProxy hides proxy credentials.
func redactProxy(proxy string) string {
	if proxy == "" {
		return ""
	}
	u, err := url.Parse(proxy)
	if err != nil || u.User == nil {
		return proxy
	}

	return u.Redacted()
}
