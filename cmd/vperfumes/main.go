// Command vperfumes is the terminal client for the VPerfumes delivery-order
// tracking API. It signs in with a persistent session cookie, manages orders
// and company accounts, renders daily reports and follows live order pushes.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vperfumes/tracker/app/client"
	"github.com/vperfumes/tracker/config"
	"github.com/vperfumes/tracker/pkg/api"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vperfumes",
	Short: "VPerfumes delivery-order tracker",
	Long:  "vperfumes tracks delivery orders against the VPerfumes API: sign in, manage orders and companies, watch live updates and export daily reports.",
}

func init() {
	// Auth
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(changePasswordCmd)

	// Orders
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(reportCmd)

	// Companies
	rootCmd.AddCommand(companiesCmd)

	// Dev server
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(routeListCmd)
}

// newClient builds the typed API client with the configured base URL and
// cookie jar file.
func newClient() (*client.Client, error) {
	a, err := api.New(
		api.WithBaseURL(config.APIBaseURL()),
		api.WithCookieFile(config.CookieFile()),
	)
	if err != nil {
		return nil, err
	}
	return client.New(a), nil
}
