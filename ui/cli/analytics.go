// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toeirei/ringmaster/internal/analytics"
	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/i18n"
	"github.com/toeirei/ringmaster/internal/tui"
)

var analyticsCmd = &cobra.Command{
	Use:     "analytics <site-id>",
	Short:   "Show visit and referral analytics for a site",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := analytics.NewRecorder(db.DefaultStore())
		stats, err := rec.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", stats.SiteID, fmt.Sprintf("%s %d", i18n.T("cli.analytics.visits"), stats.TotalVisits))
		if len(stats.Referrals) == 0 {
			fmt.Println(i18n.T("cli.analytics.none"))
			return nil
		}
		fmt.Println(i18n.T("cli.analytics.referrals") + ":")
		for _, r := range stats.Referrals {
			fmt.Printf("  %-30s %d\n", r.ReferrerID, r.Count)
		}
		return nil
	},
}

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Short:   "Open the interactive analytics dashboard",
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(db.DefaultStore())
	},
}
