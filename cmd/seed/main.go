// Command seed fills the configured store with demo users and posts.
package main

import (
	"fmt"
	"os"

	"postboard/internal/bootstrap"
	"postboard/internal/config"
	"postboard/internal/middleware"
	"postboard/internal/repository"
	"postboard/internal/seed"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts seed.Options

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Create demo users and posts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

			// Seeding runs through the same startup path as the server, so
			// the schema is migrated first.
			db, _, err := bootstrap.InitRuntime(cmd.Context(), cfg, bootstrap.Options{SkipRedis: true})
			if err != nil {
				return err
			}

			res, err := seed.Run(cmd.Context(),
				repository.NewUserRepository(db),
				repository.NewPostRepository(db),
				opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users and %d posts\n", res.Users, res.Posts)
			return nil
		},
	}

	cmd.Flags().StringP("database-url", "d", config.DefaultDatabaseURL, "store URL")
	cmd.Flags().IntVar(&opts.Users, "users", 10, "number of users to create")
	cmd.Flags().IntVar(&opts.PostsPerUser, "posts", 5, "posts per user")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "users written at once")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "fixed random seed (0 picks one)")
	return cmd
}
