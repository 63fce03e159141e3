package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"clipstudio/cmd/studioctl/tui"
)

func main() {
	server := flag.String("server", "", "clipstudio API base URL (default http://localhost:8080)")
	sessionID := flag.String("session", "", "existing session ID to attach to")
	flag.Parse()

	_ = godotenv.Load()

	baseURL := *server
	if baseURL == "" {
		baseURL = os.Getenv("CLIPSTUDIO_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	paths := flag.Args()
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			fmt.Printf("Cannot read %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	program := tea.NewProgram(tui.NewModel(baseURL, *sessionID, paths))
	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
