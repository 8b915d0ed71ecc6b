// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/djeve/internal/api/connect"
	"github.com/osa030/djeve/internal/api/djv1/djv1connect"
	"github.com/osa030/djeve/internal/app/filter"
	"github.com/osa030/djeve/internal/app/notification"
	"github.com/osa030/djeve/internal/app/session"
	"github.com/osa030/djeve/internal/chat"
	"github.com/osa030/djeve/internal/infra/config"
	"github.com/osa030/djeve/internal/infra/logger"
	"github.com/osa030/djeve/internal/infra/spotify"
	"github.com/osa030/djeve/internal/infra/twitch"
	"github.com/osa030/djeve/internal/infra/wschat"
)

var (
	app        = kingpin.New("djeve-server", "djeve song request server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	chain, err := buildFilterChain(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid filter config")
	}

	dialer, err := newDialer(cfg)
	if err != nil {
		return err
	}

	notifier := notification.NewManager()
	opts := []session.Option{}
	if chain.Len() > 0 {
		opts = append(opts, session.WithFilterChain(chain))
	}
	sessionMgr := session.NewManager(session.Config{
		ReconnectDelay: cfg.ReconnectDelay(),
		Messages:       sessionMessages(cfg.Messages),
	}, dialer, notifier, opts...)

	catalog, err := newCatalog(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create catalog client")
	}

	// Create RPC service
	djService := apiconnect.NewDJService(sessionMgr, notifier, catalog)

	var handlerOpts []connect.HandlerOption
	if cfg.Server.Token != "" {
		handlerOpts = append(handlerOpts, connect.WithInterceptors(apiconnect.NewTokenInterceptor(cfg.Server.Token)))
	} else {
		zlog.Warn().Msg("server.token is not set, API is unauthenticated")
	}

	mux := http.NewServeMux()
	mux.Handle(djv1connect.NewDJServiceHandler(djService, handlerOpts...))

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s backend=%s", cfg.Server.Addr, cfg.Chat.Backend)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	if cfg.Session.StreamerID != "" {
		zlog.Info().Msgf("Auto-connecting: streamer_id=%s", cfg.Session.StreamerID)
		if err := sessionMgr.Connect(cfg.Session.StreamerID, cfg.Session.Prefix); err != nil {
			zlog.Error().Msgf("Failed to auto-connect: %v", err)
		}
	}

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		runErr = errors.Wrap(err, "server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close session and notifications first to terminate active streams
	sessionMgr.Close()
	notifier.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return runErr
}

// newCatalog creates the Spotify catalog client, or returns nil when
// no credentials are configured.
func newCatalog(cfg *config.Config) (apiconnect.Catalog, error) {
	if !cfg.SpotifyEnabled() {
		zlog.Info().Msg("Spotify credentials not set, track lookup disabled")
		return nil, nil
	}
	client, err := spotify.New(context.Background(), spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		Market:       cfg.Spotify.Market,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// newDialer creates the chat backend selected in config.
func newDialer(cfg *config.Config) (chat.Dialer, error) {
	switch cfg.Chat.Backend {
	case config.BackendTwitch:
		if cfg.Chat.Twitch.OAuthToken == "" {
			zlog.Info().Msg("Twitch credentials not set, joining anonymously")
		}
		return twitch.NewDialer(cfg.Chat.Twitch), nil
	case config.BackendWebSocket:
		return wschat.NewDialer(cfg.Chat.WebSocket.URL, cfg.HandshakeTimeout()), nil
	default:
		return nil, errors.Newf("unknown chat backend: %s", cfg.Chat.Backend)
	}
}

// sessionMessages maps configured status texts onto the session.
func sessionMessages(m config.MessagesConfig) session.Messages {
	return session.Messages{
		Connected:    m.Connected,
		Entered:      m.Entered,
		StreamEnded:  m.StreamEnded,
		ConnectError: m.ConnectError,
		Reconnecting: m.Reconnecting,
		Disconnected: m.Disconnected,
	}
}

// buildFilterChain creates the enabled filters in name order.
func buildFilterChain(cfg *config.Config) (*filter.Chain, error) {
	registry := filter.GetRegistered()
	chain := filter.NewChain()

	names := make([]string, 0, len(cfg.Filters))
	for name := range cfg.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if !cfg.IsFilterEnabled(name) {
			continue
		}
		factory, exists := registry[name]
		if !exists {
			return nil, errors.Newf("unknown filter: %s", name)
		}
		f := factory()
		if err := f.ValidateConfig(cfg.GetFilterSettings(name)); err != nil {
			return nil, errors.Wrapf(err, "filter %s", name)
		}
		chain.Add(f)
		zlog.Info().Msgf("Filter enabled: name=%s", name)
	}
	return chain, nil
}

// printFilters prints available filters.
func printFilters() {
	registry := filter.GetRegistered()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Available Filters:")
	for _, name := range names {
		f := registry[name]()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
