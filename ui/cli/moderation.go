// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/i18n"
	"github.com/toeirei/ringmaster/internal/moderation"
)

var submissionsCmd = &cobra.Command{
	Use:     "submissions",
	Short:   "List pending site submissions",
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := moderation.NewService(db.DefaultStore())
		pending, err := svc.ListPending()
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println(i18n.T("cli.submissions.empty"))
			return nil
		}
		for _, s := range pending {
			fmt.Printf("%4d  %-30s  %-20s  %-30s  %s\n", s.ID, s.Domain, s.Name, s.URL, s.IP)
		}
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:     "approve <submission-id>",
	Short:   "Approve a pending submission and add its site to the ring",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("submission id must be numeric: %q", args[0])
		}
		svc := moderation.NewService(db.DefaultStore())
		site, err := svc.Approve(id)
		if err != nil {
			return err
		}
		log.Infof("%s %s -> position %d", i18n.T("cli.approve.success"), site.ID, site.Position)
		return nil
	},
}

var denyCmd = &cobra.Command{
	Use:     "deny <submission-id>",
	Short:   "Deny a pending submission",
	Args:    cobra.ExactArgs(1),
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("submission id must be numeric: %q", args[0])
		}
		svc := moderation.NewService(db.DefaultStore())
		if err := svc.Deny(id); err != nil {
			return err
		}
		log.Info(i18n.T("cli.deny.success"))
		return nil
	},
}
