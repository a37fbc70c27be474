// Command macrosctl manages saved recipes and issues API tokens from the
// terminal.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"github.com/yusufkecer/macro-tracker-backend/internal/config"
	"github.com/yusufkecer/macro-tracker-backend/internal/logging"
	"github.com/yusufkecer/macro-tracker-backend/internal/recipes"
	"github.com/yusufkecer/macro-tracker-backend/internal/service"
	"go.uber.org/zap"
)

type app struct {
	logger     *zap.Logger
	loadConfig func() (*config.Config, error)
	newAPI     func(cfg *config.Config) (recipes.RecipeAPI, error)
}

func defaultApp(logger *zap.Logger) *app {
	return &app{
		logger:     logger,
		loadConfig: config.Load,
		newAPI: func(cfg *config.Config) (recipes.RecipeAPI, error) {
			timeout, err := cfg.Timeout()
			if err != nil {
				return nil, err
			}
			return service.NewRecipeService(cfg.RecipesListURL, cfg.RecipesRemoveURL, &http.Client{Timeout: timeout}), nil
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "macrosctl",
		Short:         "Manage saved recipes and API tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRecipesCmd(a), newTokenCmd(a))
	return root
}

func main() {
	level := os.Getenv("LOG_LEVEL_CLI")
	if level == "" {
		level = "error"
	}
	logger, err := logging.New(level)
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	if err := newRootCmd(defaultApp(logger)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
