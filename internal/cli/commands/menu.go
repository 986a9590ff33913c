package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/foodctl/foodctl/internal/cli/client"
	"github.com/foodctl/foodctl/internal/cli/userconfig"
)

// NewMenuCmd creates the menu command
func NewMenuCmd(env *Env) *cobra.Command {
	var query client.DishQuery

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Browse the menu",
		Long: `Browse the menu, one page at a time.

Filters are remembered between runs; pass --reset to clear them.

Examples:
  $ foodctl menu
  $ foodctl menu --category Pizza --category Wok --sort PriceAsc
  $ foodctl menu --vegetarian --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reset, _ := cmd.Flags().GetBool("reset")
			applyRememberedFilters(cmd, env, &query, reset)

			if err := runMenu(cmd.Context(), env, query); err != nil {
				return err
			}

			if err := userconfig.SetMenuFilters(userconfig.MenuFilters{
				Categories: query.Categories,
				Vegetarian: query.Vegetarian,
				Sorting:    query.Sorting,
			}); err != nil {
				env.Logger.Warn().Err(err).Msg("Failed to remember menu filters")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&query.Categories, "category", nil, "Category to show (repeatable): "+strings.Join(client.Categories, ", "))
	cmd.Flags().BoolVar(&query.Vegetarian, "vegetarian", false, "Only vegetarian dishes")
	cmd.Flags().StringVar(&query.Sorting, "sort", "", "Sort order: "+sortValues())
	cmd.Flags().IntVar(&query.Page, "page", 1, "Page number")
	cmd.Flags().Bool("reset", false, "Forget the remembered filters")

	return cmd
}

// applyRememberedFilters fills the filters the user did not pass from the
// user config
func applyRememberedFilters(cmd *cobra.Command, env *Env, query *client.DishQuery, reset bool) {
	if reset {
		return
	}

	uc, err := userconfig.Load()
	if err != nil {
		env.Logger.Warn().Err(err).Msg("Failed to load user config")
		return
	}

	flags := cmd.Flags()
	if !flags.Changed("category") {
		query.Categories = uc.Menu.Categories
	}
	if !flags.Changed("vegetarian") {
		query.Vegetarian = uc.Menu.Vegetarian
	}
	if !flags.Changed("sort") {
		query.Sorting = uc.Menu.Sorting
	}
}

func sortValues() string {
	values := make([]string, len(client.Sortings))
	for i, s := range client.Sortings {
		values[i] = s.Value
	}
	return strings.Join(values, ", ")
}

func validateQuery(query client.DishQuery) error {
	for _, c := range query.Categories {
		if !client.IsCategory(c) {
			return fmt.Errorf("unknown category %q (choose from %s)", c, strings.Join(client.Categories, ", "))
		}
	}
	if query.Sorting != "" && !client.IsSorting(query.Sorting) {
		return fmt.Errorf("unknown sort order %q (choose from %s)", query.Sorting, sortValues())
	}
	if query.Page < 1 {
		return fmt.Errorf("page must be 1 or greater")
	}
	return nil
}

func runMenu(ctx context.Context, env *Env, query client.DishQuery) error {
	if err := validateQuery(query); err != nil {
		return err
	}

	api := env.client(pageMenu)

	page, err := api.Dishes(ctx, query)
	if err != nil {
		return pageError(err, "failed to load menu")
	}

	out := env.stdout()
	if len(page.Dishes) == 0 {
		fmt.Fprintln(out, "No dishes match these filters.")
		return nil
	}

	var basket *client.Basket
	if api.Authenticated() {
		basket, err = api.Basket(ctx)
		if err != nil {
			env.Logger.Debug().Err(err).Msg("Failed to load cart for menu")
		}
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tRATING\tVEG\tIN CART")
	fmt.Fprintln(w, "──\t────\t────────\t─────\t──────\t───\t───────")

	for _, dish := range page.Dishes {
		rating := "N/A"
		if dish.Rating != nil {
			rating = fmt.Sprintf("%.1f", *dish.Rating)
		}
		veg := ""
		if dish.Vegetarian {
			veg = "yes"
		}
		inCart := ""
		if basket != nil {
			if n := basket.Amount(dish.ID); n > 0 {
				inCart = fmt.Sprintf("%d", n)
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			dish.ID,
			dish.Name,
			dish.Category,
			formatPrice(dish.Price),
			rating,
			veg,
			inCart,
		)
	}

	w.Flush()

	p := page.Pagination
	fmt.Fprintf(out, "\nPage %d of %d", p.Current, p.Count)
	if p.Current < p.Count {
		fmt.Fprintf(out, " (next: foodctl menu --page %d)", p.Current+1)
	}
	fmt.Fprintln(out)

	return nil
}
