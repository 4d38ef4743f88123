package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tbourn/foodgram-backend/internal/auth"
	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

var (
	tokenUser string
	tokenTTL  time.Duration
)

// Credentials are issued outside the API; this command mints a token for an
// existing account, for operators and local testing.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		db, err := openDB()
		if err != nil {
			return err
		}

		var u *domain.User
		if id, perr := strconv.ParseUint(tokenUser, 10, 64); perr == nil {
			u, err = repo.GetUser(cmd.Context(), db, uint(id))
		} else {
			u, err = repo.GetUserByEmail(cmd.Context(), db, tokenUser)
		}
		if errors.Is(err, repo.ErrNotFound) {
			return fmt.Errorf("user %q not found", tokenUser)
		}
		if err != nil {
			return err
		}

		tok, err := auth.SignToken([]byte(cfg.Auth.JWTSecret), u.ID, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id or email")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}
