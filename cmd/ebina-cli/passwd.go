package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the account password",
		Long: `Change the account password. The server may demand a fresh WebAuthn
assertion or one-time code before accepting the change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			fmt.Fprint(os.Stderr, "current password: ")
			current, err := readLine()
			if err != nil {
				return err
			}
			fmt.Fprint(os.Stderr, "new password: ")
			next, err := readLine()
			if err != nil {
				return err
			}

			if err := client.ChangePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			fmt.Println("password changed")
			return nil
		},
	}
}
