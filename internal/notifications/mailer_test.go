package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirekitlabs/hirekit-backend/pkg/config"
)

func testSendgridConfig() config.SendgridConfig {
	return config.SendgridConfig{
		APIKey:      "sg-test-key",
		DefaultFrom: "kits@hirekit.io",
		FromName:    "HireKit",
	}
}

func TestSendGridMailerSendsMail(t *testing.T) {
	var captured sendgridRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sg-test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	mailer, err := NewSendGridMailer(testSendgridConfig())
	require.NoError(t, err)
	mailer.endpoint = srv.URL

	err = mailer.Send(context.Background(), Email{
		To:      "buyer@example.com",
		ToName:  "Buyer",
		Subject: "Your HireKit order is confirmed",
		Body:    "Thanks for your order.",
	})
	require.NoError(t, err)

	require.Len(t, captured.Personalizations, 1)
	require.Len(t, captured.Personalizations[0].To, 1)
	assert.Equal(t, "buyer@example.com", captured.Personalizations[0].To[0].Email)
	assert.Equal(t, "kits@hirekit.io", captured.From.Email)
	assert.Equal(t, "HireKit", captured.From.Name)
	assert.Equal(t, "Your HireKit order is confirmed", captured.Subject)
	require.Len(t, captured.Content, 1)
	assert.Equal(t, "text/plain", captured.Content[0].Type)
}

func TestSendGridMailerSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad recipient"}]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	mailer, err := NewSendGridMailer(testSendgridConfig())
	require.NoError(t, err)
	mailer.endpoint = srv.URL

	err = mailer.Send(context.Background(), Email{To: "buyer@example.com", Subject: "x", Body: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "bad recipient")
}

func TestSendGridMailerValidatesInput(t *testing.T) {
	mailer, err := NewSendGridMailer(testSendgridConfig())
	require.NoError(t, err)

	assert.Error(t, mailer.Send(context.Background(), Email{Subject: "x", Body: "y"}))
	assert.Error(t, mailer.Send(context.Background(), Email{To: "buyer@example.com", Body: "y"}))
}

func TestSendGridMailerRequiresConfig(t *testing.T) {
	_, err := NewSendGridMailer(config.SendgridConfig{DefaultFrom: "kits@hirekit.io"})
	assert.Error(t, err)

	_, err = NewSendGridMailer(config.SendgridConfig{APIKey: "sg"})
	assert.Error(t, err)
}
