// Package main provides the djeve consumer CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	apiconnect "github.com/osa030/djeve/internal/api/connect"
	djv1 "github.com/osa030/djeve/internal/api/djv1"
	"github.com/osa030/djeve/internal/api/djv1/djv1connect"
	"github.com/osa030/djeve/internal/infra/logger"
	"github.com/osa030/djeve/internal/infra/prefs"
)

var (
	app     = kingpin.New("djcli", "djeve song request client")
	server  = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token   = app.Flag("token", "API token (or set DJEVE_TOKEN env)").Envar("DJEVE_TOKEN").String()
	dataDir = app.Flag("data-dir", "Directory for local preferences").Envar("DJEVE_DATA_DIR").Default(defaultDataDir()).String()
	verbose = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile = app.Flag("logfile", "Path to log file (default: stderr, none for board)").String()

	// connect command
	connectCmd      = app.Command("connect", "Connect to a chat room")
	connectStreamer = connectCmd.Arg("streamer-id", "Streamer ID (chat room)").Required().String()
	connectPrefix   = connectCmd.Flag("prefix", "Song request prefix").Default("!신청").String()

	// disconnect command
	disconnectCmd = app.Command("disconnect", "Disconnect from the chat room")

	// status command
	statusCmd = app.Command("status", "Get connection status")

	// watch command
	watchCmd  = app.Command("watch", "Print notifications and collect song requests")
	watchDump = watchCmd.Flag("dump", "Print the full request list after every request").Bool()

	// board command
	boardCmd = app.Command("board", "Interactive song request board")

	// theme commands
	themeCmd      = app.Command("theme", "Show or change the display theme")
	themeGetCmd   = themeCmd.Command("get", "Show the current theme").Default()
	themeSetCmd   = themeCmd.Command("set", "Change the theme")
	themeSetValue = themeSetCmd.Arg("theme", "purple, blue, green, dark or light").Required().String()
)

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".djeve"
	}
	return filepath.Join(dir, "djeve")
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{
		Output: "stderr",
		Level:  "warn",
	}
	if command == boardCmd.FullCommand() {
		loggerConfig.Output = "none"
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
		fmt.Printf("Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	ctx := context.Background()

	switch command {
	case themeGetCmd.FullCommand():
		withPrefs(func(store *prefs.Store) error { return themeGet(ctx, store) })
		return
	case themeSetCmd.FullCommand():
		withPrefs(func(store *prefs.Store) error { return themeSet(ctx, store, *themeSetValue) })
		return
	}

	client := newClient(*server, *token)

	switch command {
	case connectCmd.FullCommand():
		connectRoom(ctx, client, *connectStreamer, *connectPrefix)
	case disconnectCmd.FullCommand():
		disconnect(ctx, client)
	case statusCmd.FullCommand():
		status(ctx, client)
	case watchCmd.FullCommand():
		if err := watch(ctx, client, os.Stdout, *watchDump); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	case boardCmd.FullCommand():
		withPrefs(func(store *prefs.Store) error {
			return runBoard(ctx, client, store)
		})
	}
}

func newClient(serverURL, apiToken string) djv1connect.DJServiceClient {
	var opts []connect.ClientOption
	if apiToken != "" {
		opts = append(opts, connect.WithInterceptors(apiconnect.NewClientTokenInterceptor(apiToken)))
	}
	return djv1connect.NewDJServiceClient(http.DefaultClient, serverURL, opts...)
}

// withPrefs opens the preference store for the duration of fn.
func withPrefs(fn func(store *prefs.Store) error) {
	store, err := prefs.Open(prefs.DefaultPath(*dataDir))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	err = fn(store)
	if cerr := store.Close(); cerr != nil {
		zlog.Warn().Msgf("failed to close preferences: %v", cerr)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func connectRoom(ctx context.Context, client djv1connect.DJServiceClient, streamerID, prefix string) {
	_, err := client.Connect(ctx, connect.NewRequest(&djv1.ConnectRequest{
		StreamerID: streamerID,
		Prefix:     prefix,
	}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Connecting to %s (prefix %q). Use `djcli watch` to follow progress.\n", streamerID, prefix)
}

func disconnect(ctx context.Context, client djv1connect.DJServiceClient) {
	if _, err := client.Disconnect(ctx, connect.NewRequest(&djv1.DisconnectRequest{})); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Disconnected")
}

func status(ctx context.Context, client djv1connect.DJServiceClient) {
	resp, err := client.GetStatus(ctx, connect.NewRequest(&djv1.GetStatusRequest{}))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	s := resp.Msg
	fmt.Println("=== CONNECTION STATUS ===")
	fmt.Printf("Connected: %v\n", s.IsConnected)
	fmt.Printf("State: %s\n", s.State)
	if s.StreamerID != "" {
		fmt.Printf("Streamer ID: %s\n", s.StreamerID)
		fmt.Printf("Prefix: %s\n", s.Prefix)
	}
}

func themeGet(ctx context.Context, store *prefs.Store) error {
	theme, err := store.Theme(ctx)
	if err != nil {
		return err
	}
	fmt.Println(theme)
	return nil
}

func themeSet(ctx context.Context, store *prefs.Store, value string) error {
	theme, err := prefs.ParseTheme(value)
	if err != nil {
		return err
	}
	if err := store.SetTheme(ctx, theme); err != nil {
		return err
	}
	fmt.Printf("Theme set to %s\n", theme)
	return nil
}
