package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/foodctl/foodctl/internal/cli/client"
	"github.com/foodctl/foodctl/internal/validation"
)

// minDeliveryLead is how far ahead a delivery must be scheduled
const minDeliveryLead = time.Hour

var errEmptyCart = errors.New("your cart is empty (add dishes with: foodctl cart add <dish-id>)")

type checkoutOptions struct {
	Address      string
	DeliveryTime string
}

// NewCheckoutCmd creates the checkout command
func NewCheckoutCmd(env *Env) *cobra.Command {
	var opts checkoutOptions

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long: `Place an order for everything in the cart.

The address defaults to the one in your profile. Delivery must be at least
one hour from now; by default the earliest possible time is used.

Examples:
  $ foodctl checkout
  $ foodctl checkout --address "Lenina 1" --delivery-time "2026-03-01 19:30"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(cmd.Context(), env, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Address, "address", "", "Delivery address (defaults to the profile address)")
	cmd.Flags().StringVar(&opts.DeliveryTime, "delivery-time", "", `Delivery time, "YYYY-MM-DD HH:MM" local or RFC 3339 (defaults to one hour from now)`)

	return cmd
}

// earliestDelivery returns now plus the minimum lead, rounded up to the minute
func earliestDelivery(now time.Time) time.Time {
	t := now.Add(minDeliveryLead)
	if r := t.Truncate(time.Minute); !r.Equal(t) {
		return r.Add(time.Minute)
	}
	return t
}

// parseDeliveryTime accepts local "YYYY-MM-DD HH:MM" or RFC 3339
func parseDeliveryTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid delivery time %q (use \"YYYY-MM-DD HH:MM\")", s)
}

func runCheckout(ctx context.Context, env *Env, opts checkoutOptions) error {
	api := env.client(pageCheckout)
	if !api.Authenticated() {
		return fmt.Errorf("not authenticated. Please run 'foodctl login' first")
	}

	basket, err := api.Basket(ctx)
	if err != nil {
		return pageError(err, "error loading cart data")
	}
	if basket.Empty() {
		return errEmptyCart
	}

	now := env.now()
	deliveryTime := earliestDelivery(now)
	if opts.DeliveryTime != "" {
		if deliveryTime, err = parseDeliveryTime(opts.DeliveryTime); err != nil {
			return err
		}
	}
	if deliveryTime.Before(now.Add(minDeliveryLead)) {
		return fmt.Errorf("delivery time must be at least one hour from now (earliest: %s)",
			earliestDelivery(now).Format("2006-01-02 15:04"))
	}

	address := strings.TrimSpace(opts.Address)
	var phone string
	profile, err := api.Profile(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errSessionExpired
		}
		env.Logger.Debug().Err(err).Msg("Failed to load profile for checkout")
	} else {
		phone = profile.PhoneNumber
		if address == "" {
			address = profile.Address
		}
	}

	if address == "" && env.Interactive {
		if address, err = promptLine("Delivery address", "", requireText); err != nil {
			return err
		}
	}

	req := client.CreateOrderRequest{
		DeliveryTime: client.Time{Time: deliveryTime.UTC()},
		Address:      address,
	}
	if err := validation.New().Struct(req); err != nil {
		return fmt.Errorf("delivery address is required (use --address or set one with: foodctl profile update)")
	}

	out := env.stdout()
	renderBasket(env, basket)
	fmt.Fprintf(out, "\nDeliver to: %s\n", address)
	if phone != "" {
		fmt.Fprintf(out, "Phone:      %s\n", validation.FormatPhone(phone))
	}
	fmt.Fprintf(out, "Delivery:   %s\n\n", deliveryTime.Local().Format("2006-01-02 15:04"))

	if err := api.CreateOrder(ctx, req); err != nil {
		return pageError(err, "failed to place order")
	}

	fmt.Fprintln(out, "✓ Order placed! Track it with: foodctl orders")
	return nil
}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}
