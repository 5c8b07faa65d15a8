package repository

import (
	"context"
	"testing"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotConfigRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBotConfigRepository(db.DB)
	ctx := context.Background()

	t.Run("missing config", func(t *testing.T) {
		_, err := repo.Get(ctx, 1)
		assert.ErrorIs(t, err, ErrBotConfigNotFound)
	})

	t.Run("insert then read back", func(t *testing.T) {
		cfg := model.DefaultBotConfig(1, "Empório Natural")
		cfg.FAQ = []model.FAQEntry{
			{Question: "vocês entregam?", Answer: "Sim, em toda a cidade."},
		}

		_, err := repo.Upsert(ctx, cfg)
		require.NoError(t, err)

		got, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Empório Natural", got.StoreName)
		require.Len(t, got.FAQ, 1)
		assert.Equal(t, "vocês entregam?", got.FAQ[0].Question)
	})

	t.Run("second upsert overwrites", func(t *testing.T) {
		cfg := model.DefaultBotConfig(1, "Empório Natural")
		cfg.Greeting = "Oi! Como posso ajudar?"
		cfg.Knowledge = "Entregas em até 2 dias úteis."
		cfg.FAQ = []model.FAQEntry{}

		_, err := repo.Upsert(ctx, cfg)
		require.NoError(t, err)

		got, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Oi! Como posso ajudar?", got.Greeting)
		assert.Equal(t, "Entregas em até 2 dias úteis.", got.Knowledge)
		assert.Empty(t, got.FAQ)
	})

	t.Run("emojis off persists", func(t *testing.T) {
		cfg := model.DefaultBotConfig(1, "Empório Natural")
		cfg.UseEmojis = false

		_, err := repo.Upsert(ctx, cfg)
		require.NoError(t, err)

		got, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.False(t, got.UseEmojis)
	})

	t.Run("configs are per tenant", func(t *testing.T) {
		_, err := repo.Upsert(ctx, model.DefaultBotConfig(2, "Outra Loja"))
		require.NoError(t, err)

		got, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Empório Natural", got.StoreName)
	})
}
