package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/school-core/internal/models"
	"github.com/noah-isme/school-core/internal/service"
)

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")
			name, _ := cmd.Flags().GetString("name")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			token, err := service.NewAuthService(cfg.Auth.Secret).
				IssueToken(user, models.UserRole(strings.ToUpper(role)), name, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User id placed in the token")
	cmd.Flags().String("role", string(models.RoleAdmin), "Role placed in the token")
	cmd.Flags().String("name", "", "Display name placed in the token")
	cmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
