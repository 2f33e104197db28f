// Copyright (c) 2026 ToeiRei
// Ringmaster - webring directory service
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/toeirei/ringmaster/internal/db"
	"github.com/toeirei/ringmaster/internal/i18n"
	"github.com/toeirei/ringmaster/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webring HTTP server",
	Long: `Starts the HTTP server: public navigation redirects (/next/:id,
/prev/:id, /random, /webring), the submission endpoint (/submit-site) and,
when admin credentials are configured, the /admin moderation API.`,
	PreRunE: setupDefaultServices,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	cfg := appConfig.Server
	if v, err := cmd.Flags().GetString("listen"); err == nil && v != "" {
		cfg.Listen = v
	}

	// An admin user without a password gets prompted once at startup rather
	// than silently serving an unprotected admin surface.
	if cfg.AdminUser != "" && cfg.AdminPassword == "" {
		fmt.Printf("Password for admin user %q: ", cfg.AdminUser)
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("could not read admin password: %w", err)
		}
		cfg.AdminPassword = string(pw)
	}

	srv := server.New(cfg, db.DefaultStore())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("%s %s", i18n.T("cli.serve.listening"), cfg.Listen)
	return srv.Run(ctx)
}
