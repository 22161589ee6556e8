package main

import (
	"context"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
