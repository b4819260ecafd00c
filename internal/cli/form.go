package cli

import (
	"github.com/spf13/cobra"
)

func newFormCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Login form operations",
	}

	cmd.AddCommand(newFormCreateCmd())
	cmd.AddCommand(newFormGetCmd())
	cmd.AddCommand(newFormResetCmd())
	cmd.AddCommand(newFormDeleteCmd())

	return cmd
}

func newFormCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new login form",
		RunE: func(cmd *cobra.Command, args []string) error {
			var form Form
			if err := client.Post(cmd.Context(), "/api/v1/forms", nil, &form); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(form)
			return nil
		},
	}
}

func newFormGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a login form's current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var form Form
			if err := client.Get(cmd.Context(), "/api/v1/forms/"+args[0], &form); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(form)
			return nil
		},
	}
}

func newFormResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Reset a login form back to idle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var form Form
			if err := client.Post(cmd.Context(), "/api/v1/forms/"+args[0]+"/reset", nil, &form); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(form)
			return nil
		},
	}
}

func newFormDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Discard a login form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(cmd.Context(), "/api/v1/forms/"+args[0]); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Form " + args[0] + " discarded")
			return nil
		},
	}
}
