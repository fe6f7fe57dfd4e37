// Command checkinctl inspects stored QR check-ins.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/tbourn/go-checkin-backend/internal/cli"
)

func main() {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "checkinctl:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
