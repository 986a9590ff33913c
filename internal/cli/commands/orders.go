package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/foodctl/foodctl/internal/cli/client"
)

// NewOrdersCmd creates the orders command
func NewOrdersCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrders(cmd.Context(), env)
		},
	}
}

// NewOrderCmd creates the order command group
func NewOrderCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Show an order or confirm its delivery",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <order-id>",
		Short: "Show an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderShow(cmd.Context(), env, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "confirm [order-id]",
		Short: "Confirm that an order was delivered",
		Long: `Confirm that an order was delivered.

If no order id is provided, an interactive prompt lists the orders that are
still in process.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) > 0 {
				id = args[0]
			}
			return runOrderConfirm(cmd.Context(), env, id)
		},
	})

	return cmd
}

// fetchOrderDetails loads every order's detail concurrently
func fetchOrderDetails(ctx context.Context, api *client.Client, summaries []client.OrderSummary) ([]*client.Order, error) {
	details := make([]*client.Order, len(summaries))

	g, gctx := errgroup.WithContext(ctx)
	for i, summary := range summaries {
		g.Go(func() error {
			order, err := api.Order(gctx, summary.ID)
			if err != nil {
				return err
			}
			details[i] = order
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

func runOrders(ctx context.Context, env *Env) error {
	api := env.client(pageOrders)
	out := env.stdout()

	summaries, err := api.Orders(ctx)
	if err == nil && len(summaries) > 0 {
		var details []*client.Order
		details, err = fetchOrderDetails(ctx, api, summaries)
		if err == nil {
			renderOrders(env, details)
			return nil
		}
	}

	if errors.Is(err, client.ErrUnauthorized) {
		return errSessionExpired
	}
	if err != nil {
		env.Logger.Warn().Err(err).Msg("Failed to load orders")
	}

	fmt.Fprintln(out, "You haven't placed any orders yet.")
	fmt.Fprintln(out, "\nBrowse the menu with: foodctl menu")
	return nil
}

func renderOrders(env *Env, orders []*client.Order) {
	w := tabwriter.NewWriter(env.stdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tSTATUS\tORDERED\tDELIVERY\tTOTAL\tDISHES")
	fmt.Fprintln(w, "─────\t──────\t───────\t────────\t─────\t──────")

	for _, order := range orders {
		fmt.Fprintf(w, "#%s\t%s\t%s\t%s\t%s\t%s\n",
			order.ShortID(),
			client.StatusLabel(order.Status),
			formatTime(order.OrderTime),
			formatTime(order.DeliveryTime),
			formatPrice(order.Price),
			dishNames(order.Dishes),
		)
	}

	w.Flush()
}

func dishNames(items []client.BasketItem) string {
	if len(items) == 0 {
		return "-"
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = fmt.Sprintf("%s ×%d", item.Name, item.Amount)
	}
	return strings.Join(names, ", ")
}

func runOrderShow(ctx context.Context, env *Env, id string) error {
	order, err := env.client(pageOrder).Order(ctx, id)
	if err != nil {
		return pageError(err, "failed to load order")
	}

	out := env.stdout()
	fmt.Fprintf(out, "Order #%s\n", order.ShortID())
	fmt.Fprintf(out, "  ID:        %s\n", order.ID)
	fmt.Fprintf(out, "  Status:    %s\n", client.StatusLabel(order.Status))
	fmt.Fprintf(out, "  Ordered:   %s\n", formatTime(order.OrderTime))
	fmt.Fprintf(out, "  Delivery:  %s\n", formatTime(order.DeliveryTime))
	fmt.Fprintf(out, "  Address:   %s\n\n", order.Address)

	if len(order.Dishes) == 0 {
		fmt.Fprintln(out, "This order contains no items.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DISH\tPRICE\tQTY\tSUBTOTAL")
		for _, item := range order.Dishes {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", item.Name, formatPrice(item.Price), item.Amount, formatPrice(item.LineTotal()))
		}
		w.Flush()
	}

	fmt.Fprintf(out, "\nTotal: %s\n", formatPrice(order.Price))
	if order.Status == client.StatusInProcess {
		fmt.Fprintf(out, "Received it? Run: foodctl order confirm %s\n", order.ID)
	}
	return nil
}

func runOrderConfirm(ctx context.Context, env *Env, id string) error {
	api := env.client(pageOrder)

	if id == "" {
		if !env.Interactive {
			return fmt.Errorf("order id is required in non-interactive mode")
		}
		orders, err := api.Orders(ctx)
		if err != nil {
			return pageError(err, "failed to load orders")
		}
		options := orderOptions(orders)
		if len(options) == 0 {
			fmt.Fprintln(env.stdout(), "No orders waiting for delivery.")
			return nil
		}
		if id, err = selectOne("Select the delivered order", options); err != nil {
			return err
		}
	}

	if err := api.ConfirmDelivery(ctx, id); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errSessionExpired
		}
		env.Logger.Warn().Err(err).Str("order_id", id).Msg("Failed to confirm delivery")
		return fmt.Errorf("failed to confirm delivery, please try again: %w", err)
	}

	fmt.Fprintln(env.stdout(), "✓ Delivery confirmed. You can now rate the dishes from this order.")
	return nil
}
