package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nozomi-hiragi/ebina-go"
	"github.com/nozomi-hiragi/ebina-go/store"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "ebina-cli",
		Short: "Command-line client for the Ebina management API",
		Long: `ebina-cli maintains an authenticated session against an Ebina server
and keeps it alive across invocations: an expired token is recovered
transparently through the configured authentication method.

Configuration comes from the environment (or a .env file):

  EBINA_BASE_URL      base URL of the server (required)
  EBINA_REDIS_ADDR    optional Redis address for session persistence
  EBINA_SESSION_FILE  optional file path for session persistence
  EBINA_DEBUG         set to 1 for debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		loginCmd(),
		logoutCmd(),
		whoamiCmd(),
		devicesCmd(),
		passwdCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if os.Getenv("EBINA_DEBUG") == "" {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newClient builds a session client from the environment. The session
// store is Redis when EBINA_REDIS_ADDR is set, a JSON file when
// EBINA_SESSION_FILE is set, and process-local memory otherwise.
func newClient() (*ebina.Client, error) {
	baseURL := os.Getenv("EBINA_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("EBINA_BASE_URL is not set")
	}

	cfg := ebina.Config{
		BaseURL:   baseURL,
		Logger:    newLogger(),
		UserAgent: "ebina-cli/" + version,
	}

	builder := ebina.New().
		WithConfig(cfg).
		WithPrompter(&terminalPrompter{})

	switch {
	case os.Getenv("EBINA_REDIS_ADDR") != "":
		builder.WithRedis(redis.NewClient(&redis.Options{
			Addr:     os.Getenv("EBINA_REDIS_ADDR"),
			Password: os.Getenv("EBINA_REDIS_PASSWORD"),
		}))
	case os.Getenv("EBINA_SESSION_FILE") != "":
		builder.WithStore(store.NewFileStore(os.Getenv("EBINA_SESSION_FILE")))
	}

	return builder.Build()
}

// terminalPrompter reads credentials from stdin.
type terminalPrompter struct{}

func (terminalPrompter) Password(_ context.Context, identity string, attempt int) (string, error) {
	if attempt > 1 {
		fmt.Fprintf(os.Stderr, "invalid password, try again (%d)\n", attempt)
	}
	fmt.Fprintf(os.Stderr, "password for %s: ", identity)
	return readLine()
}

func (terminalPrompter) Code(context.Context, string) (string, error) {
	fmt.Fprint(os.Stderr, "one-time code: ")
	return readLine()
}

func readLine() (string, error) {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
