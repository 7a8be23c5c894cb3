package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			claims, ok := client.Identity()
			if !ok {
				return fmt.Errorf("no session, run 'ebina-cli login' first")
			}

			fmt.Printf("identity: %s\n", claims.Subject)
			if claims.DisplayName != "" && claims.DisplayName != claims.Subject {
				fmt.Printf("name:     %s\n", claims.DisplayName)
			}
			if !claims.ExpiresAt.IsZero() {
				fmt.Printf("expires:  %s\n", claims.ExpiresAt.Format("2006-01-02 15:04:05"))
			}
			if client.SessionExpired() {
				fmt.Println("status:   expired (will reauthenticate on next use)")
			} else {
				fmt.Println("status:   active")
			}
			return nil
		},
	}
}
