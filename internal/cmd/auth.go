package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/strowk/renovate/pkg/config"
	"github.com/strowk/renovate/pkg/github"
	"github.com/strowk/renovate/pkg/platform"
)

// initPlatform resolves credentials, builds the API client and performs
// platform initialization. When no token is configured anywhere and stdin is
// a terminal, the user is prompted for one.
func initPlatform(ctx context.Context) (*platform.Platform, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	token, err := cfg.ResolveToken()
	if err != nil {
		return nil, err
	}
	if token == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		token, err = promptToken()
		if err != nil {
			return nil, err
		}
	}

	client, err := github.NewClient(cfg.Platform.Endpoint, token)
	if err != nil {
		return nil, err
	}

	return platform.InitPlatform(ctx, client, platform.Options{
		Endpoint: cfg.Platform.Endpoint,
		Token:    token,
		Logger:   slog.Default(),
	})
}

// promptToken reads a token from the terminal without echoing it.
func promptToken() (string, error) {
	fmt.Fprint(os.Stderr, "Platform token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return string(raw), nil
}
