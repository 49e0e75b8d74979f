// Command gradectl is a terminal client for the gradebook API
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/SAP-F-2025/gradebook-service/pkg/client"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	baseURL := os.Getenv("GRADEBOOK_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cli := &commandLine{
		api:     client.New(baseURL),
		session: client.NewSession(client.NewDefaultTokenStore()),
		out:     os.Stdout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.run(ctx, os.Args); err != nil {
		if errors.Is(err, errHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
