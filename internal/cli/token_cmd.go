package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	httpMW "github.com/yungbote/unipilot-backend/internal/http/middleware"
)

func newTokenCmd(app *App) *cobra.Command {
	var (
		userID uint
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := httpMW.SignToken(app.JWTSecret, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "User id to put in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
