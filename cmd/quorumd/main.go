package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"quorum-core/core"
	llmclient "quorum-core/llm-client"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	configPath := flag.String("config", "quorum.toml", "path to the TOML config file")
	port := flag.Int("port", 0, "HTTP listen port (overrides config)")
	flag.Parse()

	// Load .env file from the current directory
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	fallbackURL := cfg.Fallback.OllamaURL
	if env := os.Getenv("OLLAMA_URL"); env != "" {
		fallbackURL = env
	}

	orchestrator := core.NewOrchestrator(core.OrchestratorConfig{
		Registry: core.NewRegistry(),
		Caller:   llmclient.NewRouter(),
		Fallback: llmclient.NewOllamaGenerator(fallbackURL, cfg.Fallback.Model),
	})

	// Register the static roster before accepting any tasks, so tasks that
	// reference these agents are never rejected at creation time.
	for _, agent := range cfg.Agents {
		agentID, err := orchestrator.Registry().Register(agent.AgentConfig())
		if err != nil {
			log.Fatalf("Failed to register agent %q: %v", agent.Name, err)
		}
		log.Printf("Registered roster agent %s as %s", agent.Name, agentID)
	}

	server := core.NewAPIServer(orchestrator)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(cfg.Server.Port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down", sig)
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
