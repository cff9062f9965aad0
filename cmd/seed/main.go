// Command seed resets the database to a small fixed data set and prints a
// development token for each seeded user.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/content-ratings/internal/auth"
	"github.com/Clark-Hu/content-ratings/internal/config"
	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/logging"
	"github.com/Clark-Hu/content-ratings/internal/repository"
	"github.com/Clark-Hu/content-ratings/internal/store"
)

type seedUser struct {
	email, username, password string
}

var users = []seedUser{
	{"user1@example.com", "user1", "password1"},
	{"user2@example.com", "user2", "password2"},
}

var content = []domain.ContentFields{
	{
		Title:        "Sample Game",
		Description:  "A fun game to play.",
		Category:     domain.CategoryGame,
		ThumbnailURL: "https://example.com/game-thumbnail.jpg",
		ContentURL:   "https://example.com/game",
	},
	{
		Title:        "Sample Video",
		Description:  "An interesting video.",
		Category:     domain.CategoryVideo,
		ThumbnailURL: "https://example.com/video-thumbnail.jpg",
		ContentURL:   "https://example.com/video",
	},
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger := logging.Logger()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	st, err := store.New(ctx, cfg.DBURL, store.Options{MaxConns: 2, Logger: logger})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	repo := repository.New(st)
	if err := repo.Truncate(ctx); err != nil {
		return fmt.Errorf("clear tables: %w", err)
	}

	created := make([]domain.User, 0, len(users))
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.username, err)
		}
		user, err := repo.Users.Create(ctx, u.email, u.username, string(hash))
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.username, err)
		}
		created = append(created, user)
	}

	items := make([]domain.Content, 0, len(content))
	for _, fields := range content {
		c, err := repo.Content.Create(ctx, fields)
		if err != nil {
			return fmt.Errorf("create content %q: %w", fields.Title, err)
		}
		items = append(items, c)
	}

	ratings := []repository.RatingParams{
		{UserID: created[0].ID, ContentID: items[0].ID, Value: 5},
		{UserID: created[1].ID, ContentID: items[1].ID, Value: 4},
		{UserID: created[0].ID, ContentID: items[1].ID, Value: 3},
	}
	for _, p := range ratings {
		if _, err := repo.Ratings.Insert(ctx, p); err != nil {
			return fmt.Errorf("create rating: %w", err)
		}
	}
	logger.Info().Int("users", len(created)).Int("content", len(items)).Int("ratings", len(ratings)).Msg("database seeded")

	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, time.Duration(cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		return err
	}
	for _, u := range created {
		token, err := verifier.Mint(domain.Principal{ID: u.ID, Username: u.Username})
		if err != nil {
			return fmt.Errorf("mint token for %s: %w", u.Username, err)
		}
		fmt.Printf("%s\t%s\t%s\n", u.Username, u.ID, token)
	}
	return nil
}
