package main

import (
	"fmt"
	"time"

	"github.com/godilite/review-server/internal/app"
	"github.com/godilite/review-server/internal/config"
	"github.com/godilite/review-server/internal/render"
	"github.com/godilite/review-server/internal/service"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli carries what every subcommand needs once the root pre-run is done.
type cli struct {
	backend   string
	url       string
	path      string
	authToken string
	dbPath    string
	timeout   time.Duration
	verbose   bool
	noColor   bool

	cfg        *config.Config
	logger     *zap.Logger
	store      service.ReviewStore
	closeStore func() error
	renderer   *render.Renderer
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "reviews",
		Short: "Read and write product reviews",
		Long: `reviews talks to the review store directly: list what customers wrote,
show the rating summary, submit a review from flags, or open the
interactive rating form.

Settings come from the environment (and .env) and can be overridden by flags.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.backend, "backend", "", "Store backend: http, firebase or sqlite (env STORE_BACKEND)")
	flags.StringVar(&c.url, "url", "", "Document store base URL (env STORE_URL)")
	flags.StringVar(&c.path, "path", "", "Collection path inside the store (env STORE_PATH)")
	flags.StringVar(&c.authToken, "auth-token", "", "Auth token sent as ?auth= (env STORE_AUTH_TOKEN)")
	flags.StringVar(&c.dbPath, "db", "", "SQLite database file for the sqlite backend (env DB_PATH)")
	flags.DurationVar(&c.timeout, "timeout", 0, "Store request timeout (env STORE_TIMEOUT)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Log to stderr")
	flags.BoolVar(&c.noColor, "no-color", false, "Disable colors")

	root.AddCommand(
		newListCmd(c),
		newSummaryCmd(c),
		newSubmitCmd(c),
		newRateCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	_ = godotenv.Load(".env")

	cfg := config.LoadFromEnv()
	flags := cmd.Flags()
	if flags.Changed("backend") {
		switch c.backend {
		case config.StoreBackendHTTP, config.StoreBackendFirebase, config.StoreBackendSQLite:
			cfg.StoreBackend = c.backend
		default:
			return fmt.Errorf("unknown backend %q: want http, firebase or sqlite", c.backend)
		}
	}
	if flags.Changed("url") {
		cfg.StoreURL = c.url
	}
	if flags.Changed("path") {
		cfg.StorePath = c.path
	}
	if flags.Changed("auth-token") {
		cfg.StoreAuthToken = c.authToken
	}
	if flags.Changed("db") {
		cfg.DBPath = c.dbPath
	}
	if flags.Changed("timeout") && c.timeout > 0 {
		cfg.StoreTimeout = c.timeout
	}
	c.cfg = cfg

	c.logger = zap.NewNop()
	if c.verbose {
		logger, err := config.NewLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		c.logger = logger
	}

	styles := render.DefaultStyles()
	if c.noColor {
		styles = render.PlainStyles()
	}
	c.renderer = render.New(styles)

	store, closeStore, err := app.NewReviewStore(cmd.Context(), cfg, c.logger)
	if err != nil {
		return err
	}
	c.store = store
	c.closeStore = closeStore
	return nil
}

func (c *cli) teardown() error {
	if c.logger != nil {
		_ = c.logger.Sync()
	}
	if c.closeStore != nil {
		return c.closeStore()
	}
	return nil
}

func (c *cli) newAggregator() *service.RatingAggregator {
	return service.NewRatingAggregator(c.store, c.logger,
		service.WithStoreTimeout(c.cfg.StoreTimeout),
	)
}
