package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vperfumes/tracker/app/models"
	"github.com/vperfumes/tracker/app/view"
	"github.com/vperfumes/tracker/pkg/validate"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Manage delivery orders",
}

var (
	filterStatus  string
	filterCompany string
	filterQuery   string
)

// vperfumes orders list: fetch, filter and print the order collection.
var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders, optionally filtered by status, company or search text",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		orders, err := c.Orders(cmd.Context())
		if err != nil {
			return err
		}

		visible := view.Filter(view.SortByDateDesc(orders), filterStatus, filterCompany, filterQuery)
		if len(visible) == 0 {
			fmt.Println("No orders.")
			return nil
		}
		return printOrders(visible)
	},
}

func printOrders(orders []models.Order) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tORDER #\tCUSTOMER\tPHONE\tAREA\tPRICE\tDELIVERY\tSTATUS\tDATE\tCOMPANY")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t%s\t%s\t%s\n",
			o.ID, o.OrderNumber, o.CustomerName, o.CustomerPhone, o.DeliveryArea,
			o.OrderPrice, o.DeliveryCost, o.Status, o.OrderDate, o.CompanyName)
	}
	return w.Flush()
}

var orderInput models.OrderInput

func orderInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&orderInput.OrderNumber, "number", "", "order number")
	cmd.Flags().StringVar(&orderInput.CustomerName, "customer", "", "customer name")
	cmd.Flags().StringVar(&orderInput.CustomerPhone, "phone", "", "customer phone")
	cmd.Flags().StringVar(&orderInput.DeliveryArea, "area", "", "delivery area")
	cmd.Flags().Float64Var(&orderInput.OrderPrice, "price", 0, "order price")
	cmd.Flags().Float64Var(&orderInput.DeliveryCost, "delivery-cost", 0, "delivery cost")
	cmd.Flags().StringVar(&orderInput.Status, "status", models.StatusOngoing, "order status")
	cmd.Flags().StringVar(&orderInput.OrderDate, "date", "", "order date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&orderInput.Notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&orderInput.CompanyName, "company", "", "owning company (admin only)")
}

// validateOrderInput runs the tag rules and reports the first failure.
func validateOrderInput() error {
	errs := validate.Struct(orderInput)
	if !validate.HasErrors(errs) {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Errorf("%s", errs[fields[0]])
}

// vperfumes orders add: create an order.
var ordersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new order",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOrderInput(); err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		order, err := c.CreateOrder(cmd.Context(), orderInput)
		if err != nil {
			return err
		}
		fmt.Printf("Created order %s (#%s)\n", order.ID, order.OrderNumber)
		return nil
	},
}

// vperfumes orders edit <id>: replace an order's fields.
var ordersEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update an existing order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateOrderInput(); err != nil {
			return err
		}

		c, err := newClient()
		if err != nil {
			return err
		}
		order, err := c.UpdateOrder(cmd.Context(), args[0], orderInput)
		if err != nil {
			return err
		}
		fmt.Printf("Updated order %s (#%s)\n", order.ID, order.OrderNumber)
		return nil
	},
}

// vperfumes orders delete <id>: remove an order.
var ordersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.DeleteOrder(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Order deleted.")
		return nil
	},
}

// vperfumes orders history <id>: print the audit trail.
var ordersHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show an order's change history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		entries, err := c.OrderHistory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No history.")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("%s  %s by %s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Username)
			fields := make([]string, 0, len(e.Changes))
			for f := range e.Changes {
				fields = append(fields, f)
			}
			sort.Strings(fields)
			for _, f := range fields {
				fmt.Printf("    %s: %v\n", f, e.Changes[f])
			}
		}
		return nil
	},
}

// vperfumes stats: print the server-computed aggregate snapshot.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show order counts by status",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		stats, err := c.Stats(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "Total\t%d\n", stats.Total)
		fmt.Fprintf(w, "Ongoing\t%d\n", stats.Ongoing)
		fmt.Fprintf(w, "Completed\t%d\n", stats.Completed)
		fmt.Fprintf(w, "Cancelled\t%d\n", stats.Cancelled)
		return w.Flush()
	},
}

func init() {
	ordersListCmd.Flags().StringVar(&filterStatus, "status", view.All, "filter by status")
	ordersListCmd.Flags().StringVar(&filterCompany, "company", view.All, "filter by company name")
	ordersListCmd.Flags().StringVarP(&filterQuery, "search", "s", "", "search order number, customer, phone, area or date")

	orderInputFlags(ordersAddCmd)
	orderInputFlags(ordersEditCmd)

	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersAddCmd)
	ordersCmd.AddCommand(ordersEditCmd)
	ordersCmd.AddCommand(ordersDeleteCmd)
	ordersCmd.AddCommand(ordersHistoryCmd)
}
