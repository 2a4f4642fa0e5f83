package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finrag-orchestrator/internal/domain"
	"finrag-orchestrator/internal/usecase"
)

func newFallbackUsecase(answerer *mockAnswerSubQuestionUsecase, llm *mockLLMClient) usecase.FallbackAnswerUsecase {
	prompts := usecase.NewPromptBuilder(testMarker, 300, 3)
	return usecase.NewFallbackAnswerUsecase(answerer, llm, prompts, 3, discardLogger())
}

func sufficientAnswer(question string) *domain.SubQuestionAnswer {
	return &domain.SubQuestionAnswer{
		Question:   question,
		AnswerText: "Revenue was $53.8B [1].",
		Status:     domain.StatusAnswered,
	}
}

func insufficientAnswer(question string) *domain.SubQuestionAnswer {
	return &domain.SubQuestionAnswer{
		Question:   question,
		AnswerText: testMarker,
		Status:     domain.StatusInsufficient,
	}
}

func TestFallbackAnswer_SufficientFirstTryShortCircuits(t *testing.T) {
	ctx := context.Background()
	answerer := new(mockAnswerSubQuestionUsecase)
	llm := new(mockLLMClient)
	uc := newFallbackUsecase(answerer, llm)

	answerer.On("Execute", mock.Anything, mock.Anything).Return(sufficientAnswer("What was Tesla's revenue in 2021?"), nil)

	answer, err := uc.Execute(ctx, usecase.AnswerSubQuestionInput{Question: "What was Tesla's revenue in 2021?"})
	require.NoError(t, err)
	assert.False(t, answer.Insufficient())
	answerer.AssertNumberOfCalls(t, "Execute", 1)
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackAnswer_AlternativeSucceeds(t *testing.T) {
	ctx := context.Background()
	answerer := new(mockAnswerSubQuestionUsecase)
	llm := new(mockLLMClient)
	uc := newFallbackUsecase(answerer, llm)

	original := "What was Tesla's income in 2021?"
	answerer.On("Execute", mock.Anything, usecase.AnswerSubQuestionInput{Question: original, TargetYear: 2021}).
		Return(insufficientAnswer(original), nil)
	llm.On("Complete", mock.Anything, mock.Anything).
		Return("- What was Tesla's revenue in 2021?\n- What was Tesla's net income for full year 2021?", nil)
	answerer.On("Execute", mock.Anything, usecase.AnswerSubQuestionInput{Question: "What was Tesla's revenue in 2021?", TargetYear: 2021}).
		Return(insufficientAnswer("What was Tesla's revenue in 2021?"), nil)
	answerer.On("Execute", mock.Anything, usecase.AnswerSubQuestionInput{Question: "What was Tesla's net income for full year 2021?", TargetYear: 2021}).
		Return(sufficientAnswer("What was Tesla's net income for full year 2021?"), nil)

	answer, err := uc.Execute(ctx, usecase.AnswerSubQuestionInput{Question: original, TargetYear: 2021})
	require.NoError(t, err)
	assert.False(t, answer.Insufficient())
	assert.Equal(t, "What was Tesla's income in 2021? (tried alternative: What was Tesla's net income for full year 2021?)", answer.Question)
}

func TestFallbackAnswer_AllAttemptsInsufficientReturnsOriginal(t *testing.T) {
	ctx := context.Background()
	answerer := new(mockAnswerSubQuestionUsecase)
	llm := new(mockLLMClient)
	uc := newFallbackUsecase(answerer, llm)

	original := insufficientAnswer("What was the 2031 dividend?")
	answerer.On("Execute", mock.Anything, usecase.AnswerSubQuestionInput{Question: original.Question}).Return(original, nil)
	answerer.On("Execute", mock.Anything, mock.Anything).Return(insufficientAnswer("alt"), nil)
	llm.On("Complete", mock.Anything, mock.Anything).Return("- alt one\n- alt two\n- alt three", nil)

	answer, err := uc.Execute(ctx, usecase.AnswerSubQuestionInput{Question: original.Question})
	require.NoError(t, err)
	assert.True(t, answer.Insufficient())
	assert.Equal(t, original.Question, answer.Question)

	// One original attempt plus at most three alternatives.
	answerer.AssertNumberOfCalls(t, "Execute", 4)
}

func TestFallbackAnswer_AlternativeListClampedToMax(t *testing.T) {
	ctx := context.Background()
	answerer := new(mockAnswerSubQuestionUsecase)
	llm := new(mockLLMClient)
	uc := newFallbackUsecase(answerer, llm)

	answerer.On("Execute", mock.Anything, mock.Anything).Return(insufficientAnswer("q"), nil)
	llm.On("Complete", mock.Anything, mock.Anything).
		Return("- a1\n- a2\n- a3\n- a4\n- a5", nil)

	_, err := uc.Execute(ctx, usecase.AnswerSubQuestionInput{Question: "q"})
	require.NoError(t, err)
	answerer.AssertNumberOfCalls(t, "Execute", 4)
}

func TestFallbackAnswer_NoAlternativesReturnsOriginal(t *testing.T) {
	ctx := context.Background()
	answerer := new(mockAnswerSubQuestionUsecase)
	llm := new(mockLLMClient)
	uc := newFallbackUsecase(answerer, llm)

	answerer.On("Execute", mock.Anything, mock.Anything).Return(insufficientAnswer("q"), nil)
	llm.On("Complete", mock.Anything, mock.Anything).Return("I cannot rephrase this.", nil)

	answer, err := uc.Execute(ctx, usecase.AnswerSubQuestionInput{Question: "q"})
	require.NoError(t, err)
	assert.True(t, answer.Insufficient())
	answerer.AssertNumberOfCalls(t, "Execute", 1)
}

func TestFallbackAnswer_TransportErrorAborts(t *testing.T) {
	ctx := context.Background()
	answerer := new(mockAnswerSubQuestionUsecase)
	llm := new(mockLLMClient)
	uc := newFallbackUsecase(answerer, llm)

	answerer.On("Execute", mock.Anything, mock.Anything).Return(insufficientAnswer("q"), nil)
	llm.On("Complete", mock.Anything, mock.Anything).Return("", domain.ErrRateLimited)

	answer, err := uc.Execute(ctx, usecase.AnswerSubQuestionInput{Question: "q"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	assert.Nil(t, answer)
}
