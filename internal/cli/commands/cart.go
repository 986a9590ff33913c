package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/foodctl/foodctl/internal/cli/client"
)

// NewCartCmd creates the cart command group. Without a subcommand it shows the
// cart.
func NewCartCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCart(cmd.Context(), env)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <dish-id>",
		Short: "Add one portion of a dish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartAdd(cmd.Context(), env, args[0])
		},
	})

	var all bool
	remove := &cobra.Command{
		Use:   "remove <dish-id>",
		Short: "Remove one portion of a dish (or the whole line with --all)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartRemove(cmd.Context(), env, args[0], all)
		},
	}
	remove.Flags().BoolVar(&all, "all", false, "Remove every portion of the dish")
	cmd.AddCommand(remove)

	return cmd
}

func runCart(ctx context.Context, env *Env) error {
	basket, err := env.client(pageCart).Basket(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errSessionExpired
		}
		// Anything else shows as an empty cart
		env.Logger.Warn().Err(err).Msg("Failed to load cart")
		basket = &client.Basket{}
	}

	renderBasket(env, basket)
	return nil
}

func renderBasket(env *Env, basket *client.Basket) {
	out := env.stdout()
	if basket.Empty() {
		fmt.Fprintln(out, "Your cart is empty.")
		fmt.Fprintf(out, "Total: %s\n", formatPrice(0))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDISH\tPRICE\tQTY\tSUBTOTAL")
	fmt.Fprintln(w, "──\t────\t─────\t───\t────────")

	for _, item := range basket.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			item.ID,
			item.Name,
			formatPrice(item.Price),
			item.Amount,
			formatPrice(item.LineTotal()),
		)
	}

	w.Flush()

	fmt.Fprintf(out, "\nItems: %d\n", basket.TotalQuantity())
	fmt.Fprintf(out, "Total: %s\n", formatPrice(basket.Total()))
}

func runCartAdd(ctx context.Context, env *Env, id string) error {
	api := env.client(pageCart)
	if err := api.AddToBasket(ctx, id); err != nil {
		return pageError(err, "failed to add dish to cart")
	}

	fmt.Fprintln(env.stdout(), "✓ Added to cart.")
	return reportQuantity(ctx, env, api, id)
}

func runCartRemove(ctx context.Context, env *Env, id string, all bool) error {
	api := env.client(pageCart)
	if err := api.RemoveFromBasket(ctx, id, !all); err != nil {
		return pageError(err, "failed to remove dish from cart")
	}

	if all {
		fmt.Fprintln(env.stdout(), "✓ Removed from cart.")
		return nil
	}
	fmt.Fprintln(env.stdout(), "✓ Removed one portion.")
	return reportQuantity(ctx, env, api, id)
}

// reportQuantity prints how many portions of the dish are now in the cart
func reportQuantity(ctx context.Context, env *Env, api *client.Client, id string) error {
	basket, err := api.Basket(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errSessionExpired
		}
		env.Logger.Debug().Err(err).Msg("Failed to refresh cart")
		return nil
	}
	fmt.Fprintf(env.stdout(), "  In cart: %d (items: %d, total: %s)\n",
		basket.Amount(id), basket.TotalQuantity(), formatPrice(basket.Total()))
	return nil
}
