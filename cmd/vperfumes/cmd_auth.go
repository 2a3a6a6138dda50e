package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vperfumes/tracker/app/session"
	"github.com/vperfumes/tracker/pkg/validate"
)

var loginUsername, loginPassword string

// vperfumes login: authenticate and persist the session cookie.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session cookie",
	RunE: func(cmd *cobra.Command, args []string) error {
		username := strings.TrimSpace(loginUsername)
		if username == "" {
			var err error
			username, err = promptLine("Username: ")
			if err != nil {
				return err
			}
		}
		password := loginPassword
		if password == "" {
			var err error
			password, err = promptLine("Password: ")
			if err != nil {
				return err
			}
		}
		if username == "" || password == "" {
			return fmt.Errorf("username and password are required")
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		identity, err := c.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}

		if identity.IsAdmin() {
			fmt.Printf("Signed in as %s (admin)\n", identity.Username)
		} else {
			fmt.Printf("Signed in as %s (%s)\n", identity.Username, identity.CompanyName)
		}
		return nil
	},
}

// vperfumes logout: clear the server session and the local cookie.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		// The provider clears local state even when the server call fails.
		provider := session.New(c)
		provider.Logout(cmd.Context())
		fmt.Println("Signed out.")
		return nil
	},
}

// vperfumes whoami: resolve the stored session to an identity.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		provider := session.New(c)
		provider.Load(cmd.Context())

		identity := provider.Identity()
		if identity == nil {
			fmt.Println("Not signed in.")
			return nil
		}

		fmt.Printf("Username: %s\n", identity.Username)
		fmt.Printf("Role:     %s\n", identity.Role)
		if identity.CompanyName != "" {
			fmt.Printf("Company:  %s\n", identity.CompanyName)
		}
		return nil
	},
}

var currentPassword, newPassword string

// vperfumes change-password: rotate the caller's own password.
var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		current := currentPassword
		if current == "" {
			var err error
			current, err = promptLine("Current password: ")
			if err != nil {
				return err
			}
		}
		updated := newPassword
		if updated == "" {
			var err error
			updated, err = promptLine("New password: ")
			if err != nil {
				return err
			}
			confirm, err := promptLine("Confirm new password: ")
			if err != nil {
				return err
			}
			if confirm != updated {
				return fmt.Errorf("passwords do not match")
			}
		}
		if !validate.MinLength(updated, 6) {
			return fmt.Errorf("new password must be at least 6 characters")
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.ChangePassword(cmd.Context(), current, updated); err != nil {
			return err
		}
		fmt.Println("Password updated.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "login username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "login password (prompted when omitted)")

	changePasswordCmd.Flags().StringVar(&currentPassword, "current", "", "current password (prompted when omitted)")
	changePasswordCmd.Flags().StringVar(&newPassword, "new", "", "new password (prompted when omitted)")
}

// promptLine reads one line from stdin after printing the prompt.
func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
