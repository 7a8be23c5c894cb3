package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func devicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Manage registered WebAuthn credentials",
	}

	cmd.AddCommand(
		devicesListCmd(),
		devicesRemoveCmd(),
		devicesRegisterCmd(),
		devicesEnableCmd(),
		devicesDisableCmd(),
	)

	return cmd
}

func devicesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			devices, err := client.ListDevices(cmd.Context())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("no devices registered")
				return nil
			}

			for _, d := range devices {
				state := "enabled"
				if !d.Enabled {
					state = "disabled"
				}
				fmt.Printf("%-20s %s\n", d.Name, state)
			}
			return nil
		},
	}
}

func devicesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a credential (may require a fresh proof of identity)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.DeleteDevice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}
}

func devicesRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <name>",
		Short: "Register this machine's authenticator under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.RegisterDevice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("registered %s\n", args[0])
			return nil
		},
	}
}

func devicesEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <name>",
		Short: "Allow a credential to be used for login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.EnableDevice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("enabled %s\n", args[0])
			return nil
		},
	}
}

func devicesDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <name>",
		Short: "Keep a credential registered but unusable for login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.DisableDevice(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("disabled %s\n", args[0])
			return nil
		},
	}
}
