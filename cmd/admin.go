package cmd

import (
	"fmt"

	"github.com/kendall-kelly/printshop-api/config"
	"github.com/kendall-kelly/printshop-api/services"
	"github.com/spf13/cobra"
)

var (
	adminInput services.RegisterInput

	createAdminCmd = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			in := adminInput
			in.IsAdmin = true
			user, err := services.NewUserService(config.GetDB()).Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created administrator %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
)

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminInput.Username, "username", "", "login name")
	f.StringVar(&adminInput.Email, "email", "", "email address")
	f.StringVar(&adminInput.Password, "password", "", "password (at least 8 characters with a letter and a digit)")
	f.StringVar(&adminInput.FirstName, "first-name", "", "first name")
	f.StringVar(&adminInput.LastName, "last-name", "", "last name")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
