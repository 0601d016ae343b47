package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roivaz/appliance-diag/internal/appliance"
	"github.com/roivaz/appliance-diag/internal/config"
	"github.com/roivaz/appliance-diag/internal/diagnosis"
	"github.com/roivaz/appliance-diag/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:          "diagnose",
	Short:        "Diagnose an appliance fault from the command line",
	SilenceUsage: true,
	RunE:         run,
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available prompt profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := diagnosis.NewFromConfig(cmd.Context(), logging.ForLevel(config.LogLevel()))
		if err != nil {
			return err
		}
		for _, p := range svc.Profiles() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", p.Name, p.Description)
		}
		return nil
	},
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; cancel() }()

	svc, err := diagnosis.NewFromConfig(ctx, logging.ForLevel(config.LogLevel()))
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	req := appliance.Request{}
	req.ApplianceType, _ = flags.GetString("appliance")
	req.ModelName, _ = flags.GetString("model")
	req.IssueDescription, _ = flags.GetString("issue")
	req.ErrorCode, _ = flags.GetString("error-code")
	profile, _ := flags.GetString("profile")

	res, err := svc.DiagnoseWithProfile(ctx, req, profile)
	if err != nil {
		var verr *appliance.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintln(cmd.ErrOrStderr(), verr.UserMessage())
			return verr
		}
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), res.Text())
	return nil
}

func main() {
	rootCmd.PersistentFlags().String("llm-backend", "gemini", "Generation backend (gemini or ollama)")
	rootCmd.PersistentFlags().String("llm-model", "", "Generation model name")
	rootCmd.PersistentFlags().String("ollama-url", "", "Ollama base URL")
	rootCmd.PersistentFlags().String("request-mode", "required", "Appliance type handling (required or inferred)")
	rootCmd.PersistentFlags().String("prompt-profile", "classic", "Default prompt profile")
	rootCmd.PersistentFlags().String("profiles-file", "", "YAML file replacing the built-in prompt profiles")
	rootCmd.PersistentFlags().Bool("structured-output", false, "Ask the model for JSON sections")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, error)")

	rootCmd.Flags().String("appliance", "", "Appliance type, e.g. \"Washing Machine\"")
	rootCmd.Flags().String("model", "", "Brand and model, e.g. \"LG T70SPSF2Z\"")
	rootCmd.Flags().String("issue", "", "Description of the problem")
	rootCmd.Flags().String("error-code", "", "Error code shown by the appliance, if any")
	rootCmd.Flags().String("profile", "", "Prompt profile for this run (defaults to --prompt-profile)")

	config.Init(rootCmd)
	rootCmd.AddCommand(profilesCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("diagnose: %v", err)
	}
}
