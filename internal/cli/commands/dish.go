package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/foodctl/foodctl/internal/cli/client"
)

var errRatingNotAllowed = errors.New("you must receive an order with this dish before rating it")

// NewDishCmd creates the dish command group
func NewDishCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dish",
		Short: "Show and rate dishes",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <dish-id>",
		Short: "Show a dish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDishShow(cmd.Context(), env, args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rate <dish-id> [score]",
		Short: "Rate a dish from 1 to 5",
		Long: `Rate a dish from 1 to 5.

You can only rate dishes from orders that were delivered to you. Without a
score an interactive prompt is shown.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score := 0
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("score must be a number from 1 to 5")
				}
				score = n
			}
			return runDishRate(cmd.Context(), env, args[0], score)
		},
	})

	return cmd
}

func runDishShow(ctx context.Context, env *Env, id string) error {
	api := env.client(pageDish)

	dish, err := api.Dish(ctx, id)
	if err != nil {
		return pageError(err, "failed to load dish")
	}

	out := env.stdout()
	fmt.Fprintf(out, "%s\n", dish.Name)
	fmt.Fprintf(out, "  Category:    %s\n", dish.Category)
	fmt.Fprintf(out, "  Price:       %s\n", formatPrice(dish.Price))
	fmt.Fprintf(out, "  Rating:      %s\n", formatRating(dish.Rating))
	if dish.Vegetarian {
		fmt.Fprintln(out, "  Vegetarian:  yes")
	}
	if dish.Description != "" {
		fmt.Fprintf(out, "\n  %s\n", dish.Description)
	}

	if !api.Authenticated() {
		fmt.Fprintln(out, "\nLog in to order or rate this dish.")
		return nil
	}

	basket, err := api.Basket(ctx)
	if err == nil {
		fmt.Fprintf(out, "\n  In cart:     %d\n", basket.Amount(dish.ID))
	} else if errors.Is(err, client.ErrUnauthorized) {
		return errSessionExpired
	}

	canRate, err := api.CanRate(ctx, dish.ID)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return errSessionExpired
		}
		env.Logger.Debug().Err(err).Msg("Rating check failed")
		return nil
	}
	if canRate {
		fmt.Fprintf(out, "  You can rate this dish: foodctl dish rate %s\n", dish.ID)
	}

	return nil
}

func runDishRate(ctx context.Context, env *Env, id string, score int) error {
	if score == 0 {
		if !env.Interactive {
			return fmt.Errorf("score is required in non-interactive mode")
		}
		value, err := selectOne("Your rating", ratingOptions())
		if err != nil {
			return err
		}
		score, _ = strconv.Atoi(value)
	}

	if score < 1 || score > 5 {
		return fmt.Errorf("score must be a number from 1 to 5")
	}

	api := env.client(pageDish)
	if err := api.Rate(ctx, id, score); err != nil {
		if errors.Is(err, client.ErrForbidden) {
			return errRatingNotAllowed
		}
		return pageError(err, "failed to rate dish")
	}

	fmt.Fprintf(env.stdout(), "✓ Rated %d/5. Thank you!\n", score)
	return nil
}
