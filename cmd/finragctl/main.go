package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"finrag-orchestrator/internal/di"
	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/infra"
	"finrag-orchestrator/internal/infra/config"
	"finrag-orchestrator/internal/infra/logger"
	"finrag-orchestrator/internal/usecase"
)

var (
	version = "dev"

	verbose   bool
	retrieveK int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "finragctl",
	Short:   "Ask questions over the annual-report corpus",
	Version: version,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question end to end",
	Long: `Answer a question through the full pipeline: temporal retrieval,
main answer with fallback reformulation, gap analysis, follow-up
questions, and synthesis.

Examples:
  finragctl ask "What was Ford's revenue in 2022?"
  finragctl ask "Compare Tesla and BMW operating margins in 2021"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show which passages the temporal retriever returns",
	Args:  cobra.ExactArgs(1),
	RunE:  runRetrieve,
}

var decomposeCmd = &cobra.Command{
	Use:   "decompose [question]",
	Short: "Split a compound question into sub-questions",
	Args:  cobra.ExactArgs(1),
	RunE:  runDecompose,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	retrieveCmd.Flags().IntVar(&retrieveK, "k", 0, "number of passages (0 = configured default)")
	rootCmd.AddCommand(askCmd, retrieveCmd, decomposeCmd)
}

func setup(ctx context.Context) (*di.ApplicationComponents, *config.Config, func(), error) {
	_ = godotenv.Load()
	if verbose {
		_ = os.Setenv("LOG_LEVEL", "debug")
	} else if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", "warn")
	}

	cfg := config.Load()
	log := logger.New()
	slog.SetDefault(log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := infra.NewPostgresDB(ctx, dsn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	return di.NewApplicationComponents(cfg, pool, log), cfg, pool.Close, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	components, _, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	final, err := components.AnswerUsecase.Execute(ctx, usecase.AnswerQuestionInput{
		Question: args[0],
		OnProgress: func(ev usecase.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "... %s %s\n", ev.Stage, ev.Detail)
		},
	})
	if err != nil {
		if domain.IsTransportError(err) {
			fmt.Fprintln(os.Stderr, "the language model service is unreachable or throttling; retry in a moment")
		}
		return err
	}

	fmt.Println(final.Text)
	if len(final.Citations) > 0 {
		fmt.Println("\nSources:")
		for _, cite := range final.Citations {
			fmt.Printf("  [%d] %s, chunk %d%s\n",
				cite.Index, cite.Passage.SourceDocument, cite.Passage.PositionIndex, yearSuffix(cite.Passage))
		}
	}
	return nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	components, cfg, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	targetYear := domain.ExtractTargetYear(args[0], cfg.YearMin, cfg.YearMax)
	if targetYear != domain.YearUnknown {
		fmt.Fprintf(os.Stderr, "detected year %d, applying temporal filtering\n", targetYear)
	}

	out, err := components.RetrieveUsecase.Execute(ctx, usecase.RetrievePassagesInput{
		Query:      args[0],
		K:          retrieveK,
		TargetYear: targetYear,
	})
	if err != nil {
		return err
	}

	fmt.Printf("retrieved %d passages:\n", len(out.Passages))
	for _, p := range out.Passages {
		fmt.Printf("  - %s#%d%s\n", p.SourceDocument, p.PositionIndex, yearSuffix(p))
	}
	return nil
}

func runDecompose(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	components, _, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	subQuestions, err := components.DecomposeUsecase.Execute(ctx, args[0])
	if err != nil {
		return err
	}
	for _, q := range subQuestions {
		fmt.Printf("- %s\n", q)
	}
	return nil
}

func yearSuffix(p domain.Passage) string {
	if !p.HasYear() {
		return ""
	}
	return fmt.Sprintf(" (year %d)", p.ReportYear)
}
