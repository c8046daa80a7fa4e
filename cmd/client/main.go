// Package main runs the interactive plant care console against a running
// API server.
package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/atinyakov/PlantCare/internal/client/api"
	"github.com/atinyakov/PlantCare/internal/client/console"
	"github.com/atinyakov/PlantCare/internal/logger"
	"github.com/atinyakov/PlantCare/internal/token"
)

var (
	version   string
	buildDate string
)

// main parses command-line flags, restores the saved session and starts
// the shell.
func main() {
	_ = godotenv.Load()

	var (
		baseURL     string
		caFile      string
		sessionFile string
		logLevel    string
		showVer     bool
	)

	flag.StringVar(&baseURL, "url", cmp.Or(os.Getenv("API_BASE_URL"), "http://localhost:8080"), "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to a CA cert for a privately signed server")
	flag.StringVar(&sessionFile, "session", console.DefaultSessionFile, "path to the session file")
	flag.StringVar(&logLevel, "log", "Error", "log level")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("PlantCare Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	lg := logger.New()
	if err := lg.Init(logLevel); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Log.Sync() }()

	client, err := console.NewHTTPClient(caFile, 10*time.Second)
	if err != nil {
		log.Fatal(err)
	}

	store := &console.SessionStore{Path: sessionFile}
	session := api.NewSession(baseURL, client)
	tokens, err := store.Load()
	if err != nil {
		lg.Log.Warn("ignoring unreadable session file", zap.Error(err))
	}
	session.Set(tokens)
	session.OnChange = func(t api.Tokens) {
		if err := store.Save(t); err != nil {
			lg.Log.Error("cannot save session", zap.Error(err))
		}
	}

	serviceGW := api.NewGateway(baseURL, client, token.NewHolder(nil, lg.Log), lg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sh := &console.Shell{
		Client:  api.NewClient(api.NewGateway(baseURL, client, session, lg.Log), session),
		Service: api.NewClient(serviceGW, nil),
		Prompt:  console.NewPrompter(os.Stdin, os.Stdout),
		Out:     os.Stdout,
	}
	fmt.Println("PlantCare console. Type 'help' for a list of commands.")
	sh.Run(ctx)
}
