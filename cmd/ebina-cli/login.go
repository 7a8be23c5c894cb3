package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <identity>",
		Short: "Establish a session",
		Long: `Log in as the given identity. The server selects the method: a
registered WebAuthn credential is asserted silently when available,
otherwise the password is prompted for.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			identity := args[0]
			if password != "" {
				err = client.LoginWithPassword(cmd.Context(), identity, password)
			} else {
				err = client.Login(cmd.Context(), identity)
			}
			if err != nil {
				return err
			}

			fmt.Printf("logged in as %s\n", identity)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Log in with an explicit password instead of prompting")

	return cmd
}
