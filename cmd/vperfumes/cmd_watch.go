package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vperfumes/tracker/app/feed"
	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/app/session"
)

// vperfumes watch: follow the live order feed until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow live order updates for the signed-in company",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		provider := session.New(c)
		provider.Load(cmd.Context())
		identity := provider.Identity()
		if identity == nil {
			return fmt.Errorf("not signed in; run `vperfumes login` first")
		}

		f := feed.New(c, identity)
		f.OnNewOrder = func(order models.Order) {
			fmt.Printf("\nNew order #%s for %s: %s, %s (%s)\n",
				order.OrderNumber, order.CompanyName,
				order.CustomerName, order.DeliveryArea, order.Status)
		}
		defer f.Close()

		if err := f.Start(cmd.Context()); err != nil {
			return err
		}

		stats := f.Stats()
		fmt.Printf("Watching orders for %s (total %d, ongoing %d). Ctrl-C to stop.\n",
			identity.Username, stats.Total, stats.Ongoing)
		if orders := f.Snapshot(); len(orders) > 0 {
			if err := printOrders(orders); err != nil {
				return err
			}
		}

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
		select {
		case <-interrupt:
		case <-f.Done():
			fmt.Println("Push channel closed.")
		}
		return nil
	},
}
