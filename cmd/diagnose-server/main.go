package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roivaz/appliance-diag/internal/config"
	"github.com/roivaz/appliance-diag/internal/diagnosis"
	"github.com/roivaz/appliance-diag/internal/logging"
	"github.com/roivaz/appliance-diag/internal/mcp"
	"github.com/roivaz/appliance-diag/internal/web"
)

func main() {
	root := &cobra.Command{
		Use:          "diagnose-server",
		Short:        "Appliance diagnosis HTTP and MCP server",
		SilenceUsage: true,
		RunE:         run,
	}

	root.PersistentFlags().String("llm-backend", "gemini", "Generation backend (gemini or ollama)")
	root.PersistentFlags().String("llm-model", "", "Generation model name")
	root.PersistentFlags().String("ollama-url", "", "Ollama base URL")
	root.PersistentFlags().String("request-mode", "required", "Appliance type handling (required or inferred)")
	root.PersistentFlags().String("prompt-profile", "classic", "Default prompt profile")
	root.PersistentFlags().String("profiles-file", "", "YAML file replacing the built-in prompt profiles")
	root.PersistentFlags().Bool("structured-output", false, "Ask the model for JSON sections")
	root.PersistentFlags().String("log-level", "info", "Log level (debug, info, error)")
	root.PersistentFlags().Int("port", 8080, "HTTP port")
	root.PersistentFlags().String("host", "0.0.0.0", "HTTP host")

	config.Init(root)

	if err := root.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	baseLogger := logging.ForLevel(config.LogLevel())
	logger := logging.New(baseLogger.WithName("server"))

	svc, err := diagnosis.NewFromConfig(cmd.Context(), baseLogger)
	if err != nil {
		return err
	}

	mcpServer := mcp.New(mcp.DefaultConfig(svc))
	handler := web.NewHandler(svc, baseLogger, web.WithRoute(mcp.EndpointPath, mcpServer.Handler))

	addr := config.Host() + ":" + strconv.Itoa(config.Port())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "mode", svc.Mode())
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
