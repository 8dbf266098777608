// Package cli implements the interactive finsync desktop client: a small
// REPL over the local sqlite store with explicit sync against the server.
package cli

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/avoropay/finsync/internal/client/api"
	"github.com/avoropay/finsync/internal/client/config"
	"github.com/avoropay/finsync/internal/client/services"
	"github.com/avoropay/finsync/internal/client/store"

	_ "modernc.org/sqlite"
)

type App struct {
	config      *config.Config
	authService *services.AuthService
	syncService *services.SyncService
	userName    string
	reader      *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := store.Open(ctx, c.DatabaseFile)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := api.NewClient(c.ServerBaseURL, c.RequestTimeout)

	as := services.NewAuthService(apiClient, db)
	ss := services.NewSyncService(apiClient, db)

	app := &App{
		config:      c,
		authService: as,
		syncService: ss,
		reader:      bufio.NewReader(os.Stdin),
	}

	// pick up the previous session, if any
	if username, err := as.Resume(ctx); err == nil && username != "" {
		app.userName = username
	}

	return app, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return "not logged in"
	}
	return a.userName
}
