package inference

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datagen/internal/models"
	"datagen/internal/schema"
)

func usersRequest() schema.GenerationRequest {
	name := models.DefaultColumn()
	name.ColName = "Name"
	name.DataType = models.DataTypeString
	return schema.BuildRequest([]models.Table{{
		Name:   "Users",
		Fields: []models.Column{models.IDColumn(), name},
		Count:  2,
	}})
}

func TestGenerateSendsUserInput(t *testing.T) {
	var gotBody map[string]any
	var gotAuth, gotType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"{\"Users\":[{\"ID\":1,\"Name\":\"Ada\"},{\"ID\":2,\"Name\":\"Linus\"}]}"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL, APIKey: "secret"})
	result, err := client.Generate(context.Background(), usersRequest())
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "application/json", gotType)
	require.Contains(t, gotBody, "userinput")
	input := gotBody["userinput"].(map[string]any)
	assert.Len(t, input["tables"], 1)

	require.Len(t, result["Users"], 2)
	assert.Equal(t, json.Number("1"), result["Users"][0]["ID"])
	assert.Equal(t, "Linus", result["Users"][1]["Name"])
	assert.Equal(t, 2, result.RowCount())
}

func TestGenerateAcceptsInlineOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":{"Users":[{"ID":7}]}}`))
	}))
	defer srv.Close()

	result, err := NewClient(Config{URL: srv.URL}).Generate(context.Background(), usersRequest())
	require.NoError(t, err)
	assert.Equal(t, json.Number("7"), result["Users"][0]["ID"])
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "missing output", status: http.StatusOK, body: `{}`, wantErr: ErrEmptyOutput},
		{name: "null output", status: http.StatusOK, body: `{"output":null}`, wantErr: ErrEmptyOutput},
		{name: "output not json", status: http.StatusOK, body: `{"output":"not json"}`},
		{name: "body not json", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			result, err := NewClient(Config{URL: srv.URL}).Generate(context.Background(), usersRequest())
			require.Error(t, err)
			assert.Nil(t, result)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(Config{URL: srv.URL}).Generate(context.Background(), usersRequest())

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "unauthorized")
}

func TestGenerateTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(done)

	client := NewClient(Config{URL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Generate(context.Background(), usersRequest())
	assert.Error(t, err)
}
