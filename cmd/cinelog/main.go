package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"cinelog/internal/catalog"
	"cinelog/internal/config"
	"cinelog/internal/domain"
	"cinelog/internal/identity"
	"cinelog/internal/log"
	"cinelog/internal/session"
	"cinelog/internal/store"
	"cinelog/internal/store/remote"
	"cinelog/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("cinelog %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting cinelog", "version", Version)

	// Check if configured
	if !cfg.IsConfigured() {
		return runSetupFlow(cfg)
	}

	// Open the document store backend
	docStore, err := store.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}
	defer docStore.Close()

	// Identity provider and session tracker
	provider := identity.NewLinkCodeProvider(cfg.Identity.URL, logger)
	tracker := session.NewTracker(provider, logger)

	// Persist session changes so sign-in survives restarts
	tracker.Subscribe(persistSession(logger))

	// The remote backend authenticates writes with the session's token, so
	// its credentials must follow sign-in and sign-out within the run
	if client, ok := docStore.(*remote.Client); ok {
		tracker.Subscribe(client.SessionSubscriber())
	}

	// Collection cache and mutation coordinator
	cache := catalog.NewCache()
	coordinator := catalog.NewCoordinator(docStore, tracker, cache, logger)

	// Create TUI model
	model := tui.NewModel(coordinator, tracker, cfg.UI.GridColumns, cfg.Identity.Token)

	// Run the TUI
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// persistSession writes session changes to the config file so the next run
// can resume without a fresh sign-in.
func persistSession(logger *slog.Logger) func(*domain.User) {
	return func(user *domain.User) {
		var err error
		if user == nil {
			err = config.ClearSession()
		} else {
			err = config.SaveSession(user.Token, user.Name)
		}
		if err != nil {
			logger.Error("failed to persist session", "error", err)
		}
	}
}

// runSetupFlow handles the initial setup when not configured
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to cinelog!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	// Choose the store backend
	var storeType config.StoreType
	for {
		fmt.Print("Where should your collection live? (local/remote) [local]: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		switch strings.TrimSpace(strings.ToLower(input)) {
		case "", "local":
			storeType = config.StoreTypeLocal
		case "remote":
			storeType = config.StoreTypeRemote
		default:
			fmt.Println("Please answer local or remote.")
			continue
		}
		break
	}
	cfg.Store.Type = storeType

	if storeType == config.StoreTypeRemote {
		for {
			fmt.Print("Document store URL (e.g., https://movies.example.com): ")
			input, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			url := strings.TrimSpace(input)
			if url == "" {
				fmt.Println("Store URL cannot be empty. Please try again.")
				continue
			}
			cfg.Store.URL = url
			break
		}
	} else {
		fmt.Printf("Using local database at %s\n", cfg.Store.Path)
	}

	// Identity provider, optional for read-only use
	fmt.Print("Identity provider URL (leave empty for read-only): ")
	input, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	cfg.Identity.URL = strings.TrimSpace(input)

	// An existing access token skips the interactive sign-in
	if cfg.Identity.URL != "" {
		fmt.Print("Access token (optional, hidden, enter to skip): ")
		tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		cfg.Identity.Token = strings.TrimSpace(string(tokenBytes))
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run cinelog again to start the application.")

	return nil
}
