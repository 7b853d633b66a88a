// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rewardfarm/tomarket-harvester/internal/app"
	"github.com/rewardfarm/tomarket-harvester/pkg/shape"
)

// newCheckCmd verifies the remote API shape and compares the combo file versions.
func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the web app for API changes and the combo file for updates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var driftErr error
			if cfg.SkipShapeCheck {
				fmt.Fprintln(out, "api shape: skipped")
			} else {
				err := shape.NewChecker(cfg.AppURL, cfg.RequestTimeout).Check(cmd.Context())
				switch {
				case err == nil:
					fmt.Fprintln(out, "api shape: ok")
				case errors.Is(err, shape.ErrDrift):
					fmt.Fprintf(out, "api shape: changed (%v)\n", err)
					driftErr = err
				default:
					fmt.Fprintf(out, "api shape: unknown (%v)\n", err)
				}
			}

			lookup := app.NewPuzzleLookup(cfg)
			remote, message, err := lookup.RemoteVersion(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "combo remote version: unavailable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "combo remote version: %s\n", remote)
				if message != "" {
					fmt.Fprintf(out, "combo message: %s\n", message)
				}
			}

			local, err := lookup.LocalVersion()
			if err != nil {
				fmt.Fprintf(out, "combo local version: unavailable (%v)\n", err)
			} else {
				fmt.Fprintf(out, "combo local version: %s\n", local)
				if remote != "" && remote != local {
					fmt.Fprintln(out, "combo file is out of date")
				}
			}

			return driftErr
		},
	}
}
