package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kitforge/backend/internal/config"
	"github.com/kitforge/backend/internal/logging"
	"github.com/kitforge/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMailerSend(t *testing.T) {
	var got mailPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := NewHTTPMailer(config.MailConfig{APIURL: srv.URL, APIKey: "key", From: "no-reply@kit.dev"})
	err := m.Send(context.Background(), model.Email{To: "a@x.com", Subject: "Hi", Text: "body"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer key", auth)
	assert.Equal(t, mailPayload{From: "no-reply@kit.dev", To: "a@x.com", Subject: "Hi", Text: "body"}, got)
}

func TestHTTPMailerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	m := NewHTTPMailer(config.MailConfig{APIURL: srv.URL, From: "no-reply@kit.dev"})
	err := m.Send(context.Background(), model.Email{To: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")

	unconfigured := NewHTTPMailer(config.MailConfig{})
	assert.False(t, unconfigured.IsConfigured())
	assert.Error(t, unconfigured.Send(context.Background(), model.Email{To: "a@x.com"}))
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(logging.Discard()).Send(context.Background(), model.Email{To: "a@x.com"}))
}
