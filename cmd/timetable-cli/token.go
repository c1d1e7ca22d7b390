package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sonarsarthak/EDUManager/internal/models"
	"github.com/sonarsarthak/EDUManager/internal/service"
	"github.com/sonarsarthak/EDUManager/pkg/config"
)

func tokenCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "token",
		Short:   "Issue a bearer token for the timetable API",
		Example: "timetable-cli token --subject ops --role ADMIN --ttl 2h",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subject, _ := cmd.Flags().GetString("subject")
			rawRole, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			role := models.UserRole(strings.ToUpper(rawRole))
			if !role.Valid() {
				return fmt.Errorf("unknown role %q", rawRole)
			}

			tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
			token, expiresAt, err := tokens.IssueToken(subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
	cmd.Flags().String("subject", "cli", "token subject")
	cmd.Flags().String("role", string(models.RoleAdmin), "SUPERADMIN, ADMIN or TEACHER")
	cmd.Flags().Duration("ttl", 0, "token lifetime; zero uses JWT_EXPIRATION")
	return cmd
}
