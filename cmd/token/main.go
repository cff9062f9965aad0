// Command token mints a development bearer token for a principal id.
//
//	token -sub 3f0c...        # subject only
//	token -sub 3f0c... -lookup  # take the username from the users table (needs DB_URL)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Clark-Hu/content-ratings/internal/auth"
	"github.com/Clark-Hu/content-ratings/internal/config"
	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/logging"
	"github.com/Clark-Hu/content-ratings/internal/repository"
	"github.com/Clark-Hu/content-ratings/internal/store"
)

func main() {
	sub := flag.String("sub", "", "principal id to put in the sub claim")
	username := flag.String("username", "", "display name claim")
	lookup := flag.Bool("lookup", false, "read the username from the users table")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to TOKEN_TTL_HOURS)")
	flag.Parse()

	if err := run(context.Background(), *sub, *username, *lookup, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sub, username string, lookup bool, ttl time.Duration) error {
	if sub == "" {
		return errors.New("-sub is required")
	}
	cfg, err := config.LoadAuth()
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = time.Duration(cfg.TokenTTLHours) * time.Hour
	}

	if lookup {
		if cfg.DBURL == "" {
			return errors.New("-lookup needs DB_URL")
		}
		logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stderr})
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		st, err := store.New(ctx, cfg.DBURL, store.Options{MaxConns: 1, Logger: logger})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer st.Close()
		user, err := repository.New(st).Users.GetByID(ctx, sub)
		if err != nil {
			return fmt.Errorf("look up user %s: %w", sub, err)
		}
		username = user.Username
	}

	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, ttl)
	if err != nil {
		return err
	}
	token, err := verifier.Mint(domain.Principal{ID: sub, Username: username})
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
