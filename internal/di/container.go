package di

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"finrag-orchestrator/internal/adapter/openai"
	"finrag-orchestrator/internal/adapter/repository"
	"finrag-orchestrator/internal/infra/config"
	"finrag-orchestrator/internal/infra/httpclient"
	"finrag-orchestrator/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	PassageRepo *repository.PassageRepository

	RetrieveUsecase  usecase.RetrievePassagesUsecase
	DecomposeUsecase usecase.DecomposeQuestionUsecase
	AnswerUsecase    usecase.AnswerQuestionUsecase
}

// NewApplicationComponents wires all dependencies from config and
// database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) *ApplicationComponents {
	passageRepo := repository.NewPassageRepository(pool)

	llm := openai.NewClient(openai.ClientConfig{
		APIKey:            cfg.OpenAIAPIKey,
		BaseURL:           cfg.OpenAIBaseURL,
		ChatModel:         cfg.ChatModel,
		EmbeddingModel:    cfg.EmbeddingModel,
		Timeout:           time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.LLMRequestsPerSec,
		HTTPClient:        httpclient.NewPooledClient(),
	}, log)

	prompts := usecase.NewPromptBuilder(cfg.InsufficiencyMarker, cfg.PassageCharBudget, cfg.SamplePassageLimit)
	parser := usecase.NewAnswerParser(cfg.InsufficiencyMarker, log)

	retrieveUsecase := usecase.NewRetrievePassagesUsecase(llm, passageRepo, passageRepo, usecase.RetrievalConfig{
		DefaultK:        cfg.RetrieveK,
		OverFetchFactor: cfg.OverFetchFactor,
		YearTolerance:   cfg.YearTolerance,
	}, log)

	answerer := usecase.NewAnswerSubQuestionUsecase(retrieveUsecase, prompts, llm, parser, log)
	fallback := usecase.NewFallbackAnswerUsecase(answerer, llm, prompts, cfg.MaxAlternatives, log)
	gaps := usecase.NewAnalyzeGapsUsecase(llm, prompts, log)
	decomposer := usecase.NewDecomposeQuestionUsecase(llm, prompts, passageRepo, cfg.SamplePassageLimit, log)
	synthesizer := usecase.NewSynthesizeAnswerUsecase(llm, prompts, log)

	answerUsecase := usecase.NewAnswerQuestionUsecase(
		fallback, gaps, decomposer, synthesizer,
		usecase.OrchestratorConfig{
			MaxFollowUps:        cfg.MaxFollowUps,
			FollowUpConcurrency: cfg.FollowUpConcurrency,
			YearMin:             cfg.YearMin,
			YearMax:             cfg.YearMax,
		},
		log,
		usecase.WithAnswerCache(cfg.CacheSize, time.Duration(cfg.CacheTTLMinutes)*time.Minute),
	)

	return &ApplicationComponents{
		PassageRepo:      passageRepo,
		RetrieveUsecase:  retrieveUsecase,
		DecomposeUsecase: decomposer,
		AnswerUsecase:    answerUsecase,
	}
}
