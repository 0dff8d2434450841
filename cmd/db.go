package cmd

import (
	"fmt"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/spf13/cobra"
)

var (
	initDBCmd = &cobra.Command{
		Use:   "init-db",
		Short: "Create tables and seed the admin account, products and materials",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			res, err := services.SeedDefaults(cmd.Context(), config.GetDB())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Database initialized")
			if res.AdminCreated {
				fmt.Fprintf(out, "Created admin user %q with the default password; change it after signing in\n", services.DefaultAdminUsername)
			}
			fmt.Fprintf(out, "Products created: %d, materials created: %d\n", res.ProductsCreated, res.MaterialsCreated)
			return nil
		},
	}

	demoDataCmd = &cobra.Command{
		Use:   "demo-data",
		Short: "Add a demo customer, order, job and invoice",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			created, err := services.SeedDemo(cmd.Context(), config.GetDB(), services.GetSequencer())
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(cmd.OutOrStdout(), "Demo data created")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Demo data already present")
			}
			return nil
		},
	}

	markOverdueCmd = &cobra.Command{
		Use:   "mark-overdue",
		Short: "Mark Sent invoices past their due date as Overdue",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			n, err := newInvoiceService().MarkPastDueOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d invoice(s) marked overdue\n", n)
			return nil
		},
	}
)

func newInvoiceService() *services.InvoiceService {
	return services.NewInvoiceService(config.GetDB(), services.GetSequencer())
}
