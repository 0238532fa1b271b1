package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/support-desk/internal/app"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
)

var adminsCmd = &cobra.Command{
	Use:   "admins",
	Short: "Manage admin accounts",
}

var createAdminFlags struct {
	email      string
	password   string
	name       string
	role       string
	categoryID int64
}

var createAdminCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account, typically the first super admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := service.AdminCreateInput{
			Email:    createAdminFlags.email,
			Password: createAdminFlags.password,
			Name:     createAdminFlags.name,
			Role:     domain.AdminRole(createAdminFlags.role),
		}
		if createAdminFlags.categoryID > 0 {
			id := createAdminFlags.categoryID
			input.CategoryID = &id
		}

		ctx := commandContext(cmd)
		return withApp(ctx, true, func(a *app.App) error {
			admin, err := a.Admins.Create(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %d (%s, %s)\n", admin.ID, admin.Email, admin.Role)
			return nil
		})
	},
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&createAdminFlags.email, "email", "", "login email")
	f.StringVar(&createAdminFlags.password, "password", "", "initial password")
	f.StringVar(&createAdminFlags.name, "name", "", "display name")
	f.StringVar(&createAdminFlags.role, "role", string(domain.AdminRoleSuperAdmin), "admin or super_admin")
	f.Int64Var(&createAdminFlags.categoryID, "category", 0, "category id the admin handles")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	_ = createAdminCmd.MarkFlagRequired("name")

	adminsCmd.AddCommand(createAdminCmd)
}
