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

func newSynthesizeUsecase(llm *mockLLMClient) usecase.SynthesizeAnswerUsecase {
	prompts := usecase.NewPromptBuilder(testMarker, 300, 3)
	return usecase.NewSynthesizeAnswerUsecase(llm, prompts, discardLogger())
}

func TestSynthesizeAnswer_CanonicalizesCitations(t *testing.T) {
	llm := new(mockLLMClient)
	uc := newSynthesizeUsecase(llm)

	fordQ3 := domain.Passage{ID: "f3", SourceDocument: "ford_2021.pdf", PositionIndex: 3}
	fordQ7 := domain.Passage{ID: "f7", SourceDocument: "ford_2021.pdf", PositionIndex: 7}
	teslaQ2 := domain.Passage{ID: "t2", SourceDocument: "tesla_2021.pdf", PositionIndex: 2}

	results := []domain.SubQuestionAnswer{
		{
			Question:   "What was Ford's revenue in 2021?",
			AnswerText: "Ford's revenue was $136.3B [1], up from $127.1B [2].",
			Status:     domain.StatusAnswered,
			Citations: []domain.Citation{
				{Index: 1, Passage: fordQ3},
				{Index: 2, Passage: fordQ7},
			},
		},
		{
			Question:   "What was Tesla's revenue in 2021?",
			AnswerText: "Tesla's revenue was $53.8B [1]; Ford's filing confirms the comparison basis [2].",
			Status:     domain.StatusAnswered,
			Citations: []domain.Citation{
				{Index: 1, Passage: teslaQ2},
				{Index: 2, Passage: fordQ3},
			},
		},
	}

	var prompt string
	llm.On("Complete", mock.Anything, mock.MatchedBy(func(p string) bool {
		prompt = p
		return true
	})).Return("Ford made $136.3B [1] and Tesla $53.8B [3].", nil)

	final, err := uc.Execute(context.Background(), "Compare Ford and Tesla 2021 revenue", results)
	require.NoError(t, err)

	// One number per distinct passage, contiguous from 1 in first-citation order.
	require.Len(t, final.Citations, 3)
	assert.Equal(t, 1, final.Citations[0].Index)
	assert.Equal(t, fordQ3, final.Citations[0].Passage)
	assert.Equal(t, 2, final.Citations[1].Index)
	assert.Equal(t, fordQ7, final.Citations[1].Passage)
	assert.Equal(t, 3, final.Citations[2].Index)
	assert.Equal(t, teslaQ2, final.Citations[2].Passage)

	// The second sub-answer's local markers were rewritten before prompting:
	// its [1] (tesla) became [3] and its [2] (ford chunk 3) became [1].
	assert.Contains(t, prompt, "Tesla's revenue was $53.8B [3]; Ford's filing confirms the comparison basis [1].")
	assert.Equal(t, "Ford made $136.3B [1] and Tesla $53.8B [3].", final.Text)
}

func TestSynthesizeAnswer_InsufficientSubAnswersStillSynthesize(t *testing.T) {
	llm := new(mockLLMClient)
	uc := newSynthesizeUsecase(llm)

	results := []domain.SubQuestionAnswer{
		{Question: "q1", AnswerText: "Revenue was $10B [1].", Status: domain.StatusAnswered,
			Citations: []domain.Citation{{Index: 1, Passage: domain.Passage{ID: "a"}}}},
		{Question: "q2", AnswerText: testMarker, Status: domain.StatusInsufficient},
	}

	llm.On("Complete", mock.Anything, mock.Anything).Return("Revenue was $10B [1]; the dividend could not be determined.", nil)

	final, err := uc.Execute(context.Background(), "q", results)
	require.NoError(t, err)
	require.Len(t, final.Citations, 1)
	assert.Equal(t, 1, final.Citations[0].Index)
}

func TestSynthesizeAnswer_NoResultsRejected(t *testing.T) {
	uc := newSynthesizeUsecase(new(mockLLMClient))

	_, err := uc.Execute(context.Background(), "q", nil)
	assert.Error(t, err)
}

func TestSynthesizeAnswer_LLMFailurePropagates(t *testing.T) {
	llm := new(mockLLMClient)
	uc := newSynthesizeUsecase(llm)

	llm.On("Complete", mock.Anything, mock.Anything).Return("", domain.ErrServiceTimeout)

	final, err := uc.Execute(context.Background(), "q", []domain.SubQuestionAnswer{
		{Question: "q1", AnswerText: "a", Status: domain.StatusAnswered},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServiceTimeout))
	assert.Nil(t, final)
}
