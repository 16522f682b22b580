package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bipwatch/crawler/internal/bip"
)

func samplePayload() bip.Payload {
	return bip.Payload{
		RunID:       "run-1",
		Instruction: "przeanalizuj nowe ogłoszenia",
		Entries: []bip.Entry{
			{Title: "Obwieszczenie", URL: "https://bip.example.pl/o/1", SourceName: "Gmina", Attachments: []bip.Attachment{}},
		},
	}
}

func TestPublishSendsJSONWithBearerKey(t *testing.T) {
	t.Parallel()

	var gotAuth, gotContentType string
	var gotBody bip.Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL, APIKey: "sekret"}, nil)
	require.NoError(t, p.Publish(context.Background(), samplePayload()))

	require.Equal(t, "Bearer sekret", gotAuth)
	require.Equal(t, "application/json; charset=utf-8", gotContentType)
	require.Equal(t, "run-1", gotBody.RunID)
	require.Len(t, gotBody.Entries, 1)
	require.Equal(t, "Obwieszczenie", gotBody.Entries[0].Title)
}

func TestPublishCustomHeaderIsVerbatim(t *testing.T) {
	t.Parallel()

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL, APIKey: "sekret", APIKeyHeader: "X-Api-Key"}, nil)
	require.NoError(t, p.Publish(context.Background(), samplePayload()))
	require.Equal(t, "sekret", gotKey)
}

func TestPublishNon2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL}, nil)
	err := p.Publish(context.Background(), samplePayload())
	require.Error(t, err)

	var fe *bip.FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, http.StatusBadGateway, fe.StatusCode)
}

func TestPublishMissingURL(t *testing.T) {
	t.Parallel()

	p := New(Config{}, nil)
	require.Error(t, p.Publish(context.Background(), samplePayload()))
}
