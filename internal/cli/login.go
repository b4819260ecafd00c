package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

type submitRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func newLoginCmd() *cobra.Command {
	var (
		username string
		password string
		formID   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Submit credentials to a login form",
		Long: `Submit a username and password to a login form.

A new form is created unless --form names an existing one. The resulting
form state is printed for failed attempts as well as successful ones.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := NewOutput(cfg.Output, cmd.OutOrStdout())

			if formID == "" {
				var created Form
				if err := client.Post(ctx, "/api/v1/forms", nil, &created); err != nil {
					return err
				}
				formID = created.ID
			}

			var form Form
			err := client.Post(ctx, "/api/v1/forms/"+formID+"/submit", submitRequest{
				Username: username,
				Password: password,
			}, &form)

			var reqErr *RequestError
			if errors.As(err, &reqErr) && reqErr.Form != nil {
				out.Print(*reqErr.Form)
				return err
			}
			if err != nil {
				return err
			}

			out.Print(form)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Username")
	cmd.Flags().StringVarP(&password, "pass", "p", "", "Password")
	cmd.Flags().StringVar(&formID, "form", "", "Existing form ID (default: create a new form)")

	return cmd
}
