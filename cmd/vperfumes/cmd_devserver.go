package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vperfumes/tracker/database/seeders"
	"github.com/vperfumes/tracker/internal/devserver"
)

var (
	seedAdminUser     string
	seedAdminPassword string
	seedDemo          bool
)

// vperfumes devserver: run the bundled API server.
var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run the local development API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := devserver.Open()
		if err != nil {
			return err
		}

		srv := devserver.New(store)
		if err := srv.Seed(seedAdminUser, seedAdminPassword); err != nil {
			return err
		}
		if seedDemo {
			if err := seeders.RunAll(store.DB()); err != nil {
				return err
			}
		}
		return srv.ListenAndServe()
	},
}

// vperfumes route:list: print the dev server's registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List the dev server's named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := devserver.OpenInMemory()
		if err != nil {
			return err
		}

		infos := devserver.New(store).Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	devserverCmd.Flags().StringVar(&seedAdminUser, "admin-user", "admin", "admin username to seed on first run")
	devserverCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "admin123", "admin password to seed on first run")
	devserverCmd.Flags().BoolVar(&seedDemo, "demo", false, "seed demo companies and orders")
}
