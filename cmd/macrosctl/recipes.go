package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/yusufkecer/macro-tracker-backend/internal/domain"
	"github.com/yusufkecer/macro-tracker-backend/internal/recipes"
)

var errNoData = errors.New("no data available")

func newRecipesCmd(a *app) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List or remove a user's saved recipes",
	}
	cmd.PersistentFlags().StringVar(&userID, "user", "", "user id whose recipes to show")
	cmd.MarkPersistentFlagRequired("user")

	mount := func(cmd *cobra.Command) (*recipes.View, error) {
		cfg, err := a.loadConfig()
		if err != nil {
			return nil, err
		}
		api, err := a.newAPI(cfg)
		if err != nil {
			return nil, err
		}
		view := recipes.NewView(api, userID, a.logger)
		if err := view.Load(cmd.Context()); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No data available")
			return nil, errNoData
		}
		return view, nil
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show saved recipes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := mount(cmd)
			if err != nil {
				return err
			}
			printRows(cmd.OutOrStdout(), view.Rows())
			return nil
		},
	}

	var yes bool
	remove := &cobra.Command{
		Use:   "remove <recipe-id>",
		Short: "Remove a saved recipe after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid recipe id %q", args[0])
			}

			view, err := mount(cmd)
			if err != nil {
				return err
			}

			confirm := func(row domain.RecipeRow) bool {
				if yes {
					return true
				}
				return askYesNo(cmd.InOrStdin(), cmd.OutOrStdout(), recipes.ConfirmPrompt(row))
			}

			attempted, err := view.Delete(cmd.Context(), recipeID, confirm)
			switch {
			case errors.Is(err, recipes.ErrRowNotFound):
				return fmt.Errorf("recipe %d is not in the saved list", recipeID)
			case err != nil:
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: removal request failed: %v\n", err)
			case !attempted:
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}

			printRows(cmd.OutOrStdout(), view.Rows())
			return nil
		},
	}
	remove.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(list, remove)
	return cmd
}

func askYesNo(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func printRows(out io.Writer, rows []domain.RecipeRow) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "Cuisines", "Diets", "Cooking Time (Minutes)", "Health Score", "Image")
	for _, r := range rows {
		t.Row(
			strconv.FormatInt(r.ID, 10),
			r.Title,
			r.Cuisines,
			r.Diets,
			strconv.Itoa(r.CookingTime),
			strconv.FormatFloat(r.HealthScore, 'f', -1, 64)+"%",
			r.Avatar,
		)
	}
	fmt.Fprintln(out, t.Render())
}
