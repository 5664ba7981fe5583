package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/infrastructure/config"
	"flight-extractor/internal/infrastructure/persistence"
	gormRepo "flight-extractor/internal/interface/repository"
	"flight-extractor/internal/usecase"
	"flight-extractor/pkg/agent"
	"flight-extractor/pkg/logger"
	"flight-extractor/pkg/workflowai"
)

var (
	filePath       string
	gmailID        string
	mongoID        string
	model          string
	agentID        string
	strictAirports bool
	verbose        bool
)

const ruler = "=================================================="

var rootCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract flight booking details from an email",
	Long: `Extract sends a booking email to the flight-info-extractor agent and
prints the validated flight record, followed by the run cost, latency and
a link to the run.

Without a source flag the built-in United Airlines demo email is used.`,
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	rootCmd.Flags().StringVarP(&filePath, "file", "f", "", "read the email from a file, or - for stdin")
	rootCmd.Flags().StringVar(&gmailID, "gmail-id", "", "fetch the email from Gmail by message id")
	rootCmd.Flags().StringVar(&mongoID, "mongo-id", "", "read an archived email from MongoDB by message id")
	rootCmd.Flags().StringVar(&model, "model", "", "model identifier (default: WORKFLOWAI_MODEL)")
	rootCmd.Flags().StringVar(&agentID, "agent-id", "", "agent id (default: WORKFLOWAI_AGENT_ID)")
	rootCmd.Flags().BoolVar(&strictAirports, "strict-airports", false, "reject airport codes that are not known IATA codes")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if model != "" {
		cfg.WorkflowAIModel = model
	}
	if agentID != "" {
		cfg.WorkflowAIAgentID = agentID
	}
	if cmd.Flags().Changed("strict-airports") {
		cfg.StrictAirports = strictAirports
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.NewLoggerWithLevel(level)
	defer log.Sync()

	email, err := loadEmail(ctx, cfg, log, cmd.InOrStdin())
	if err != nil {
		return err
	}

	client := workflowai.NewClient(cfg.WorkflowAIAPIKey,
		workflowai.WithAPIURL(cfg.WorkflowAIAPIURL),
		workflowai.WithWebURL(cfg.WorkflowAIWebURL),
		workflowai.WithTimeout(cfg.WorkflowAITimeout),
		workflowai.WithLogger(log),
	)
	flightAgent, err := agent.New[entity.EmailInput, entity.FlightInfo](client,
		agent.WithAgentID(cfg.WorkflowAIAgentID),
		agent.WithModel(cfg.WorkflowAIModel),
		agent.WithInstructions(usecase.DefaultInstructions),
		agent.WithSchemaID(cfg.WorkflowAISchemaID),
		agent.WithLogger(log),
	)
	if err != nil {
		return err
	}

	opts := []usecase.ExtractorOption{usecase.WithStrictAirports(cfg.StrictAirports)}
	if cfg.PostgresDSN != "" {
		db, err := persistence.NewPostgres(cfg.PostgresDSN)
		if err != nil {
			return err
		}
		opts = append(opts,
			usecase.WithAirportRepository(gormRepo.NewGormAirportRepository(db)),
			usecase.WithAirlineRepository(gormRepo.NewGormAirlineRepository(db)),
		)
	}

	extraction, err := usecase.NewFlightExtractor(flightAgent, log, opts...).ExtractEmail(ctx, email)
	if err != nil {
		return err
	}
	return printExtraction(cmd.OutOrStdout(), extraction)
}

// printExtraction writes the flight record between rulers, then the run
// summary and any resolved reference data
func printExtraction(w io.Writer, extraction *usecase.Extraction) error {
	out, err := json.MarshalIndent(extraction.Flight, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode flight info: %w", err)
	}

	fmt.Fprintln(w, "\nExtracted Flight Information:")
	fmt.Fprintln(w, ruler)
	fmt.Fprintln(w, string(out))
	fmt.Fprintln(w, ruler)
	fmt.Fprintln(w, extraction.Run.Summary())

	var refs []string
	if a := extraction.DepartureAirport; a != nil {
		refs = append(refs, fmt.Sprintf("From: %s (%s)%s", a.Name, a.Code, utcSuffix(extraction.DepartureUTC)))
	}
	if a := extraction.ArrivalAirport; a != nil {
		refs = append(refs, fmt.Sprintf("To: %s (%s)%s", a.Name, a.Code, utcSuffix(extraction.ArrivalUTC)))
	}
	if a := extraction.Airline; a != nil {
		refs = append(refs, fmt.Sprintf("Airline: %s (%s)", a.Name, a.Code))
	}
	if len(refs) > 0 {
		fmt.Fprintln(w, ruler)
		fmt.Fprintln(w, strings.Join(refs, "\n"))
	}
	return nil
}

func utcSuffix(t *time.Time) string {
	if t == nil {
		return ""
	}
	return ", " + t.Format("2006-01-02 15:04 UTC")
}
