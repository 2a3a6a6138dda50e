// Command example is a minimal walkthrough of the tracker client library:
// sign in, list orders, then follow live pushes until interrupted.
//
// Run a dev server first:
//
//	go run ./cmd/vperfumes devserver --demo
//
// Then:
//
//	cd example && go run .
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/vperfumes/tracker/app/client"
	"github.com/vperfumes/tracker/app/feed"
	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/pkg/api"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// No cookie file: this example keeps its session in memory only.
	a, err := api.New(api.WithCookieFile(""))
	if err != nil {
		return err
	}
	c := client.New(a)

	identity, err := c.Login(ctx, "aroma1", "secret123")
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", identity.Username, identity.CompanyName)

	orders, err := c.Orders(ctx)
	if err != nil {
		return err
	}
	for _, o := range orders {
		fmt.Printf("  #%s %s %s %s\n", o.OrderNumber, o.OrderDate, o.Status, o.CustomerName)
	}

	f := feed.New(c, identity)
	f.OnNewOrder = func(o models.Order) {
		fmt.Printf("new order: #%s for %s\n", o.OrderNumber, o.CustomerName)
	}
	if err := f.Start(ctx); err != nil {
		return err
	}
	defer f.Close()

	fmt.Println("watching for new orders; Ctrl-C to exit")
	select {
	case <-ctx.Done():
	case <-f.Done():
	}
	return nil
}
