package usecase_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type mockVectorIndex struct {
	mock.Mock
}

func (m *mockVectorIndex) Search(ctx context.Context, vector []float32, k int) ([]domain.Match, error) {
	args := m.Called(ctx, vector, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Match), args.Error(1)
}

type mockPassageStore struct {
	mock.Mock
}

func (m *mockPassageStore) Lookup(ctx context.Context, id string) (domain.Passage, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Passage), args.Error(1)
}

func (m *mockPassageStore) ListSample(ctx context.Context, n int) ([]domain.Passage, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Passage), args.Error(1)
}

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) Complete(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type mockRetrieveUsecase struct {
	mock.Mock
}

func (m *mockRetrieveUsecase) Execute(ctx context.Context, input usecase.RetrievePassagesInput) (*usecase.RetrievePassagesOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RetrievePassagesOutput), args.Error(1)
}

type mockAnswerSubQuestionUsecase struct {
	mock.Mock
}

func (m *mockAnswerSubQuestionUsecase) Execute(ctx context.Context, input usecase.AnswerSubQuestionInput) (*domain.SubQuestionAnswer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubQuestionAnswer), args.Error(1)
}

type mockFallbackUsecase struct {
	mock.Mock
}

func (m *mockFallbackUsecase) Execute(ctx context.Context, input usecase.AnswerSubQuestionInput) (*domain.SubQuestionAnswer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubQuestionAnswer), args.Error(1)
}

type mockAnalyzeGapsUsecase struct {
	mock.Mock
}

func (m *mockAnalyzeGapsUsecase) Execute(ctx context.Context, question, mainAnswer string, contextPassages []domain.Passage) (*domain.GapAnalysis, error) {
	args := m.Called(ctx, question, mainAnswer, contextPassages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GapAnalysis), args.Error(1)
}

type mockDecomposeUsecase struct {
	mock.Mock
}

func (m *mockDecomposeUsecase) Execute(ctx context.Context, question string) ([]string, error) {
	args := m.Called(ctx, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockDecomposeUsecase) ExecuteWithContext(ctx context.Context, question string, samples []domain.Passage) ([]string, error) {
	args := m.Called(ctx, question, samples)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockSynthesizeUsecase struct {
	mock.Mock
}

func (m *mockSynthesizeUsecase) Execute(ctx context.Context, originalQuestion string, results []domain.SubQuestionAnswer) (*domain.FinalAnswer, error) {
	args := m.Called(ctx, originalQuestion, results)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinalAnswer), args.Error(1)
}
