package gateway

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *WhatsAppClient {
	t.Helper()
	c, err := NewWhatsAppClient(&WhatsAppConfig{
		BaseURL:     "http://localhost:9",
		MasterSID:   "master-sid",
		MasterToken: "master-token",
		Timeout:     time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNewWhatsAppClient_RequiresBaseURL(t *testing.T) {
	_, err := NewWhatsAppClient(&WhatsAppConfig{})
	assert.Error(t, err)

	_, err = NewWhatsAppClient(nil)
	assert.Error(t, err)
}

func TestCredentials_SubaccountWinsOverMaster(t *testing.T) {
	c := testClient(t)

	withSub := &model.Tenant{SubaccountSID: "sub-sid", SubaccountToken: "sub-token"}
	decoded, err := base64.StdEncoding.DecodeString(c.credentials(withSub))
	require.NoError(t, err)
	assert.Equal(t, "sub-sid:sub-token", string(decoded))

	withoutSub := &model.Tenant{}
	decoded, err = base64.StdEncoding.DecodeString(c.credentials(withoutSub))
	require.NoError(t, err)
	assert.Equal(t, "master-sid:master-token", string(decoded))

	// A tenant with only half the pair falls back to master.
	half := &model.Tenant{SubaccountSID: "sub-sid"}
	decoded, err = base64.StdEncoding.DecodeString(c.credentials(half))
	require.NoError(t, err)
	assert.Equal(t, "master-sid:master-token", string(decoded))
}

func TestRenderButtonsFallback(t *testing.T) {
	out := renderButtonsFallback("Escolha uma opção:", []Button{
		{Payload: "add 5 1", Label: "Comprar Chá Verde"},
		{Payload: "carrinho", Label: "Ver carrinho"},
	})
	assert.Contains(t, out, "Escolha uma opção:")
	assert.Contains(t, out, "▪ Comprar Chá Verde")
	assert.Contains(t, out, "▪ Ver carrinho")
}

func TestRenderListFallback(t *testing.T) {
	out := renderListFallback("Nossas categorias:", []ListRow{
		{Payload: "chás", Title: "Chás", Description: "infusões e blends"},
		{Payload: "óleos", Title: "Óleos"},
	})
	assert.Contains(t, out, "▪ Chás - infusões e blends")
	assert.Contains(t, out, "▪ Óleos")
}
