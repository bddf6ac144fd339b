package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"tale-bot/internal/userclient"
)

func main() {
	userID := flag.Int64("user", 0, "user id to read and play as (required)")
	server := flag.String("server", "http://127.0.0.1:8080", "tale service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP timeout")
	flag.Parse()

	if *userID <= 0 {
		fmt.Fprintln(os.Stderr, "error: --user is required")
		os.Exit(1)
	}

	err := userclient.Run(context.Background(), os.Stdin, os.Stdout, userclient.Config{
		UserID:      *userID,
		ServerURL:   *server,
		HTTPTimeout: *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
