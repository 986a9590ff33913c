package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodctl/foodctl/internal/cli/client"
	"github.com/foodctl/foodctl/internal/cli/userconfig"
)

func TestMenu_RendersPage(t *testing.T) {
	ts := startMock(t)
	env := newTestEnv(t, ts.URL, "")

	require.NoError(t, runMenu(context.Background(), env.Env, client.DishQuery{Page: 1}))

	out := env.out.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Page 1 of 3")
	assert.Contains(t, out, "foodctl menu --page 2")
}

func TestMenu_Filters(t *testing.T) {
	ts := startMock(t)
	env := newTestEnv(t, ts.URL, "")

	require.NoError(t, runMenu(context.Background(), env.Env, client.DishQuery{
		Categories: []string{client.CategoryPizza},
		Vegetarian: true,
		Sorting:    client.SortPriceDesc,
		Page:       1,
	}))

	out := env.out.String()
	assert.Contains(t, out, "Four cheese")
	assert.Contains(t, out, "Margherita")
	assert.NotContains(t, out, "Pepperoni")
	assert.Less(t, strings.Index(out, "Four cheese"), strings.Index(out, "Margherita"), "sorted by price, high to low")
	assert.Contains(t, out, "Page 1 of 1")
	assert.NotContains(t, out, "next:")
}

func TestMenu_ShowsCartQuantities(t *testing.T) {
	ts := startMock(t)
	token := signUp(t, ts.URL, "menu@example.com")
	dishID := firstDishID(t, ts.URL)

	env := newTestEnv(t, ts.URL, token)
	require.NoError(t, runCartAdd(context.Background(), env.Env, dishID))
	require.NoError(t, runCartAdd(context.Background(), env.Env, dishID))
	env.out.Reset()

	require.NoError(t, runMenu(context.Background(), env.Env, client.DishQuery{Page: 1}))

	var line string
	for l := range strings.SplitSeq(env.out.String(), "\n") {
		if strings.HasPrefix(l, dishID) {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(line), "2"), line)
}

func TestMenu_RejectsUnknownFilters(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", "")

	err := runMenu(context.Background(), env.Env, client.DishQuery{Categories: []string{"Sushi"}, Page: 1})
	assert.ErrorContains(t, err, "unknown category")

	err = runMenu(context.Background(), env.Env, client.DishQuery{Sorting: "Random", Page: 1})
	assert.ErrorContains(t, err, "unknown sort order")

	err = runMenu(context.Background(), env.Env, client.DishQuery{Page: 0})
	assert.ErrorContains(t, err, "page must be 1 or greater")
}

func TestMenu_PageOutOfRange(t *testing.T) {
	ts := startMock(t)
	env := newTestEnv(t, ts.URL, "")

	err := runMenu(context.Background(), env.Env, client.DishQuery{Page: 9})
	require.Error(t, err)
	assert.Equal(t, 400, client.StatusCode(err))
}

func TestMenuCmd_RemembersFilters(t *testing.T) {
	ts := startMock(t)
	env := newTestEnv(t, ts.URL, "")

	run := func(args ...string) {
		t.Helper()
		if args == nil {
			args = []string{}
		}
		cmd := NewMenuCmd(env.Env)
		cmd.SetArgs(args)
		cmd.SetContext(context.Background())
		require.NoError(t, cmd.Execute())
	}

	run("--category", "Soup", "--sort", "PriceAsc")

	uc, err := userconfig.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Soup"}, uc.Menu.Categories)
	assert.Equal(t, "PriceAsc", uc.Menu.Sorting)

	env.out.Reset()
	run()
	assert.Contains(t, env.out.String(), "Tom yum")
	assert.NotContains(t, env.out.String(), "Margherita", "remembered category applied")

	env.out.Reset()
	run("--reset")
	assert.Contains(t, env.out.String(), "Page 1 of 3")
}

func TestApplyRememberedFilters_FlagsWin(t *testing.T) {
	env := newTestEnv(t, "http://example.test", "")
	require.NoError(t, userconfig.SetMenuFilters(userconfig.MenuFilters{
		Categories: []string{"Wok"},
		Vegetarian: true,
		Sorting:    "NameDesc",
	}))

	query := client.DishQuery{Sorting: "PriceAsc"}
	cmd := &cobra.Command{}
	cmd.Flags().String("sort", "", "")
	cmd.Flags().StringSlice("category", nil, "")
	cmd.Flags().Bool("vegetarian", false, "")
	require.NoError(t, cmd.Flags().Set("sort", "PriceAsc"))

	applyRememberedFilters(cmd, env.Env, &query, false)

	assert.Equal(t, []string{"Wok"}, query.Categories)
	assert.True(t, query.Vegetarian)
	assert.Equal(t, "PriceAsc", query.Sorting)
}
