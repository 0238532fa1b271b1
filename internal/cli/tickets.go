package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/support-desk/internal/app"
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Ticket maintenance",
}

var assignUnassignedCmd = &cobra.Command{
	Use:   "assign-unassigned",
	Short: "Route every open unassigned ticket to an active admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		return withApp(ctx, true, func(a *app.App) error {
			result, err := a.Sweeper.RunOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unassigned=%d assigned=%d failed=%d active_admins=%d\n",
				result.TotalUnassigned, result.Assigned, result.Failed, result.ActiveAdmins)
			return nil
		})
	},
}

func init() {
	ticketsCmd.AddCommand(assignUnassignedCmd)
}
