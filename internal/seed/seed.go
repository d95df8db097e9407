// Package seed fills a store with demo users and posts. It is intended for
// development and testing only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"postboard/internal/middleware"
	"postboard/internal/models"
	"postboard/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/sync/errgroup"
)

// Options controls how much data Run creates.
type Options struct {
	Users        int
	PostsPerUser int
	// Concurrency bounds the number of users written at once.
	Concurrency int
	// Seed makes the generated content reproducible when non-zero.
	Seed int64
}

// Result counts what Run created.
type Result struct {
	Users int
	Posts int
}

type userPlan struct {
	username string
	messages []string
}

// Run creates opts.Users users, each with opts.PostsPerUser posts. Content is
// generated up front; only the writes run concurrently.
func Run(ctx context.Context, users repository.UserRepository, posts repository.PostRepository, opts Options) (Result, error) {
	if opts.Users < 0 || opts.PostsPerUser < 0 {
		return Result{}, fmt.Errorf("seed counts must not be negative")
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}

	faker := gofakeit.New(opts.Seed)
	plans := make([]userPlan, opts.Users)
	for i := range plans {
		plans[i].username = faker.Username()
		plans[i].messages = make([]string, opts.PostsPerUser)
		for j := range plans[i].messages {
			plans[i].messages[j] = faker.Sentence(8)
		}
	}

	var createdUsers, createdPosts atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, plan := range plans {
		g.Go(func() error {
			user := &models.User{Username: plan.username}
			if err := users.Create(gctx, user); err != nil {
				return fmt.Errorf("create user %q: %w", plan.username, err)
			}
			createdUsers.Add(1)

			for _, msg := range plan.messages {
				if err := posts.Create(gctx, &models.Post{Message: msg, UserID: &user.ID}); err != nil {
					return fmt.Errorf("create post for user %d: %w", user.ID, err)
				}
				createdPosts.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	res := Result{Users: int(createdUsers.Load()), Posts: int(createdPosts.Load())}
	if err != nil {
		return res, err
	}

	middleware.Logger.Info("Seed complete", slog.Int("users", res.Users), slog.Int("posts", res.Posts))
	return res, nil
}
