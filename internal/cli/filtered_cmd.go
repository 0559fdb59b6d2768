package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/spf13/cobra"
)

const (
	defaultFilteredLimit = 100
	defaultFilteredOrder = "due"
)

func newFilteredCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filtered",
		Short: "Build temporary decks from a search",
	}

	cmd.AddCommand(
		newFilteredCreateCmd(app),
		newFilteredRebuildCmd(app),
		newFilteredEmptyCmd(app),
	)

	return cmd
}

func newFilteredCreateCmd(app *App) *cobra.Command {
	var (
		searches []string
		limits   []int
		orders   []string
		noResch  bool
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a filtered deck and fill it",
		Long: "Create a filtered deck. --search may be given twice; --limit and --order pair with\n" +
			"the search in the same position. Orders: " + orderNames() + ".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			terms, err := buildTerms(searches, limits, orders)
			if err != nil {
				return err
			}
			deck, err := app.Decks.CreateFiltered(ctx, args[0], !noResch, terms...)
			if err != nil {
				return err
			}
			n, err := app.Study.RebuildFiltered(ctx, deck.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Filtered deck %s (%d) holds %d cards\n", deck.Name, deck.ID, n)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&searches, "search", nil, "Search selecting the cards, e.g. \"deck:Lang is:due\"")
	cmd.Flags().IntSliceVar(&limits, "limit", nil, "Maximum cards per search")
	cmd.Flags().StringSliceVar(&orders, "order", nil, "Order cards are picked in")
	cmd.Flags().BoolVar(&noResch, "no-reschedule", false, "Leave scheduling untouched by answers in this deck")
	_ = cmd.MarkFlagRequired("search")
	return cmd
}

func buildTerms(searches []string, limits []int, orders []string) ([]domain.DynTerm, error) {
	if len(searches) > 2 {
		return nil, fmt.Errorf("a filtered deck takes at most two searches")
	}
	terms := make([]domain.DynTerm, 0, len(searches))
	for i, s := range searches {
		t := domain.DynTerm{Search: s, Limit: defaultFilteredLimit}
		if i < len(limits) {
			t.Limit = limits[i]
		}
		name := defaultFilteredOrder
		if i < len(orders) {
			name = orders[i]
		}
		order, err := domain.ParseDynOrder(name)
		if err != nil {
			return nil, err
		}
		t.Order = order
		terms = append(terms, t)
	}
	return terms, nil
}

func orderNames() string {
	names := make([]string, 0, len(domain.DynOrders()))
	for _, o := range domain.DynOrders() {
		names = append(names, o.String())
	}
	return strings.Join(names, ", ")
}

func newFilteredRebuildCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild DECK",
		Short: "Return a filtered deck's cards and search again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveDeck(ctx, app, args[0])
			if err != nil {
				return err
			}
			n, err := app.Study.RebuildFiltered(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt %s with %d cards\n", args[0], n)
			return nil
		},
	}
}

func newFilteredEmptyCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "empty DECK",
		Short: "Return a filtered deck's cards to their home decks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveDeck(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := confirm(ctx, app, yes, fmt.Sprintf("Return every card of %s to its home deck?", args[0]), "Empty")
			if err != nil || !ok {
				return err
			}
			n, err := app.Study.EmptyFiltered(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Returned %d cards\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
