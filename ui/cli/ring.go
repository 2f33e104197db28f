// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/i18n"
	"github.com/toeirei/ringmaster/internal/ring"
)

var sitesCmd = &cobra.Command{
	Use:     "sites",
	Short:   "List all ring members in order",
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, err := db.ListSites()
		if err != nil {
			return err
		}
		if len(sites) == 0 {
			fmt.Println(i18n.T("cli.sites.empty"))
			return nil
		}
		for _, s := range sites {
			fmt.Printf("%3d  %-30s  %-20s  %s\n", s.Position, s.ID, s.Name, s.URL)
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <site-id>",
	Short: "Remove a site from the ring",
	Long: `Removes a site from the ring and deletes its analytics counters,
both its own visit totals and any referral rows naming it as referrer.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := ring.NewRegistry(db.DefaultStore())
		if err := reg.Remove(args[0]); err != nil {
			return err
		}
		log.Infof("%s (%s)", i18n.T("cli.remove.success"), args[0])
		return nil
	},
}

var reorderCmd = &cobra.Command{
	Use:   "reorder <site-id> [site-id...]",
	Short: "Reorder the ring to match the given site ids",
	Long: `Re-sequences the ring so members appear in the order given. The
argument list must name every current member exactly once.`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := ring.NewRegistry(db.DefaultStore())
		if err := reg.Reorder(args); err != nil {
			return err
		}
		log.Info(i18n.T("cli.reorder.success"))
		return nil
	},
}
