package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"ojcli/internal/cli/repl"
	"ojcli/internal/client/config"
	"ojcli/internal/client/judge"
	"ojcli/internal/client/session"
	"ojcli/internal/client/state"
	"ojcli/internal/client/submit"
	"ojcli/internal/client/transport"
	"ojcli/pkg/utils/logger"
)

const defaultConfigPath = "configs/ojcli.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 10s)")
	token := flag.String("token", "", "Override access token")
	statePath := flag.String("state", "", "Override state file path")
	pretty := flag.Bool("pretty", false, "Pretty print JSON responses")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		return
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *statePath != "" {
		cfg.StatePath = *statePath
	}
	if *pretty {
		trueValue := true
		cfg.PrettyJSON = &trueValue
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.OutputPath,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return
	}
	defer func() { _ = logger.Sync() }()

	clientState, err := state.Load(cfg.StatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load state failed: %v\n", err)
		return
	}
	if *token != "" {
		clientState.AccessToken = *token
	}

	// Every credential change lands back in the state file, so a refresh
	// done mid-session survives a restart.
	sess := session.New(
		session.Tokens{Access: clientState.AccessToken, Refresh: clientState.RefreshToken},
		clientState.Username,
		func(tokens session.Tokens, username string) {
			clientState.AccessToken = tokens.Access
			clientState.RefreshToken = tokens.Refresh
			clientState.Username = username
			if err := state.Save(cfg.StatePath, clientState); err != nil {
				fmt.Fprintf(os.Stderr, "save state failed: %v\n", err)
			}
		},
	)

	client := transport.New(cfg.BaseURL, cfg.Timeout, sess)
	api := judge.New(client)
	dispatcher := submit.NewDispatcher(api)
	poller := submit.NewPoller(api,
		submit.WithInterval(cfg.PollInterval),
		submit.WithMaxAttempts(*cfg.MaxPolls),
	)

	shell := repl.New(client, api, dispatcher, poller, sess, &clientState, cfg.StatePath,
		cfg.PrettyJSON != nil && *cfg.PrettyJSON)
	if err := shell.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}
