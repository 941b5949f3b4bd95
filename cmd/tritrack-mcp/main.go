// Command tritrack-mcp serves the TriTrack MCP tools over stdio, reading
// data from a running server's REST API as the token's user.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/tritrack/tritrack/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", os.Getenv("TRITRACK_URL"), "TriTrack server URL (defaults to $TRITRACK_URL)")
	token := flag.String("token", os.Getenv("TRITRACK_TOKEN"), "bearer token (defaults to $TRITRACK_TOKEN)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("tritrack-mcp", Version)
		return
	}

	// stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" || *token == "" {
		fmt.Fprintf(os.Stderr, "Usage: tritrack-mcp -server <URL> -token <token>\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	client := mcp.NewHTTPClient(strings.TrimRight(*serverURL, "/"), *token)
	s := mcp.New(client, Version, log)

	log.Info("serving MCP over stdio", "server", *serverURL)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
