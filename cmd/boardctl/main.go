// Package main is the entry point for the boardctl CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"boardctl/internal/backend/boardapi"
	"boardctl/internal/cli"
	"boardctl/internal/commands"
	"boardctl/internal/config"
	"boardctl/internal/service"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	factory := func(ctx context.Context, cfg *config.Config, auth bool) (service.Board, error) {
		if auth && !cfg.HasToken() {
			return nil, service.ErrUnauthorized
		}
		return boardapi.New(ctx, cfg)
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	os.Exit(dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}
