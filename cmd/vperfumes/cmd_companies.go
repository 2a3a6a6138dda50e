package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Manage company accounts (admin only)",
}

// vperfumes companies list: print all company accounts.
var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List company accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		companies, err := c.Companies(cmd.Context())
		if err != nil {
			return err
		}
		if len(companies) == 0 {
			fmt.Println("No companies.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tCOMPANY\tCREATED")
		for _, company := range companies {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				company.ID, company.Username, company.CompanyName,
				company.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var (
	companyUsername string
	companyPassword string
	companyLabel    string
)

// vperfumes companies create: register a new company login.
var companiesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a company account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if companyUsername == "" || companyPassword == "" || companyLabel == "" {
			return fmt.Errorf("--username, --password and --name are required")
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.Register(cmd.Context(), companyUsername, companyPassword, companyLabel); err != nil {
			return err
		}
		fmt.Printf("Company %q created with username %s\n", companyLabel, companyUsername)
		return nil
	},
}

// vperfumes companies delete <id>: remove the login credential. Orders keep
// their company label.
var companiesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a company account (its orders are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.DeleteCompany(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Company deleted. Its orders remain on record.")
		return nil
	},
}

// vperfumes companies reset-password <id>: regenerate and show the password
// once. It is printed to the terminal and exists nowhere else.
var companiesResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <id>",
	Short: "Regenerate a company's password and show it once",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		result, err := c.ResetCompanyPassword(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Company:  %s\n", result.CompanyName)
		fmt.Printf("Username: %s\n", result.Username)
		fmt.Printf("Password: %s\n", result.NewPassword)
		fmt.Println("\nThis password is shown only once. Share it with the company now.")
		return nil
	},
}

func init() {
	companiesCreateCmd.Flags().StringVarP(&companyUsername, "username", "u", "", "login username for the company")
	companiesCreateCmd.Flags().StringVarP(&companyPassword, "password", "p", "", "initial password")
	companiesCreateCmd.Flags().StringVarP(&companyLabel, "name", "n", "", "company display name")

	companiesCmd.AddCommand(companiesListCmd)
	companiesCmd.AddCommand(companiesCreateCmd)
	companiesCmd.AddCommand(companiesDeleteCmd)
	companiesCmd.AddCommand(companiesResetPasswordCmd)
}
