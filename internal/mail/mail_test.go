package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMailerSend(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"msg-1"}`))
	}))
	defer srv.Close()

	m := NewHTTPMailer(srv.URL, "key-1", "no-reply@boardinghub.app")
	err := m.Send(context.Background(), Message{To: "t@example.com", Subject: "Verify", Text: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "no-reply@boardinghub.app", got.From)
	assert.Equal(t, "t@example.com", got.To)
}

func TestHTTPMailerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"bad recipient"}`))
	}))
	defer srv.Close()

	m := NewHTTPMailer(srv.URL, "", "from@x")
	m.client.SetRetryCount(0)
	err := m.Send(context.Background(), Message{To: "nobody"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad recipient")
}
