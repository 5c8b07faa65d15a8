package bot

import (
	"context"
	"testing"

	gateway "github.com/zapshop/commerce-bot/internal/gateways"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAICompleter struct{ mock.Mock }

func (m *MockAICompleter) Complete(ctx context.Context, messages []gateway.ChatMessage) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func TestLLMClassifier_KeywordsShortCircuit(t *testing.T) {
	ai := new(MockAICompleter)
	c := NewLLMClassifier(ai)

	got := c.Classify(context.Background(), "add 5 2", nil, nil)

	assert.Equal(t, IntentAddItem, got.Intent)
	ai.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestLLMClassifier_ParsesModelAnswer(t *testing.T) {
	ai := new(MockAICompleter)
	ai.On("Complete", mock.Anything, mock.Anything).
		Return(`{"intent": "add_item", "product_id": 5, "quantity": 3}`, nil)

	got := NewLLMClassifier(ai).Classify(context.Background(), "quero três chás verdes", nil, nil)

	assert.Equal(t, IntentAddItem, got.Intent)
	assert.Equal(t, int64(5), got.ProductID)
	assert.Equal(t, 3, got.Quantity)
}

func TestLLMClassifier_ToleratesCodeFences(t *testing.T) {
	ai := new(MockAICompleter)
	ai.On("Complete", mock.Anything, mock.Anything).
		Return("```json\n{\"intent\": \"show_cart\"}\n```", nil)

	got := NewLLMClassifier(ai).Classify(context.Background(), "mostra aí o que eu já pedi", nil, nil)

	assert.Equal(t, IntentShowCart, got.Intent)
}

func TestLLMClassifier_FallsBackOnFailure(t *testing.T) {
	ai := new(MockAICompleter)
	ai.On("Complete", mock.Anything, mock.Anything).
		Return("", gateway.ErrAIUnavailable)

	got := NewLLMClassifier(ai).Classify(context.Background(), "quero três chás verdes", nil, nil)

	assert.Equal(t, IntentUnknown, got.Intent)
	assert.Equal(t, "quero três chás verdes", got.Query)
}

func TestLLMClassifier_RejectsUnknownCategory(t *testing.T) {
	ai := new(MockAICompleter)
	ai.On("Complete", mock.Anything, mock.Anything).
		Return(`{"intent": "category", "category": "Vinhos"}`, nil)

	got := NewLLMClassifier(ai).Classify(context.Background(), "me mostra os vinhos", nil, []string{"Chás"})

	// The model named a category that does not exist; keep the keyword result.
	assert.Equal(t, IntentUnknown, got.Intent)
}
