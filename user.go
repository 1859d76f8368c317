package main

import (
	"fmt"

	"flatdb/auth"
	"flatdb/dberror"

	"github.com/spf13/cobra"
)

var userAdmin bool

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users and permissions (requires an admin --user)",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setup(cmd, args); err != nil {
			return err
		}
		if users == nil || !users.IsAdmin(cfg.Auth.User) {
			return dberror.New("user", dberror.ErrPermission, "managing users needs an admin --user")
		}
		return nil
	},
}

var userAddCmd = &cobra.Command{
	Use:   "add NAME PASSWORD",
	Short: "Create a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := users.AddUser(args[0], args[1], userAdmin); err != nil {
			return err
		}
		return saveUsers("User '%s' created", args[0])
	},
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd NAME PASSWORD",
	Short: "Change a user's password",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := users.SetPassword(args[0], args[1]); err != nil {
			return err
		}
		return saveUsers("Password of '%s' changed", args[0])
	},
}

var userGrantCmd = &cobra.Command{
	Use:   "grant NAME DATABASE TABLE PERMISSION",
	Short: "Give a permission; \"*\" matches any database or table",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := auth.ParsePermission(args[3])
		if err != nil {
			return err
		}
		if err := users.Grant(args[0], args[1], args[2], p); err != nil {
			return err
		}
		return saveUsers("Granted %s on %s.%s to '%s'", p, args[1], args[2], args[0])
	},
}

var userRevokeCmd = &cobra.Command{
	Use:   "revoke NAME DATABASE TABLE PERMISSION",
	Short: "Take back a permission given with the same DATABASE and TABLE",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := auth.ParsePermission(args[3])
		if err != nil {
			return err
		}
		held, err := users.Revoke(args[0], args[1], args[2], p)
		if err != nil {
			return err
		}
		if !held {
			fmt.Fprintf(stdout, "'%s' did not hold %s on %s.%s\n", args[0], p, args[1], args[2])
			return nil
		}
		return saveUsers("Revoked %s on %s.%s from '%s'", p, args[1], args[2], args[0])
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user names",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range users.Users() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	},
}

func init() {
	userAddCmd.Flags().BoolVar(&userAdmin, "admin", false, "Make the user an administrator")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userPasswdCmd)
	userCmd.AddCommand(userGrantCmd)
	userCmd.AddCommand(userRevokeCmd)
	userCmd.AddCommand(userListCmd)
	rootCmd.AddCommand(userCmd)
}

func saveUsers(format string, args ...any) error {
	if err := users.Save(); err != nil {
		return err
	}
	log.Debugf("users saved to %s", users.Path())
	_, err := fmt.Fprintf(stdout, format+"\n", args...)
	return err
}
