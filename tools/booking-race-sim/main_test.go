package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaceTalliesStatusCodes(t *testing.T) {
	var (
		mu    sync.Mutex
		taken bool
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req bookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if taken {
			w.WriteHeader(http.StatusConflict)
			return
		}
		taken = true
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	counts, err := race(context.Background(), srv.URL, 10, time.Second, func(i int) bookingRequest {
		return bookingRequest{ClientID: "c", ConsultantID: "7", Date: "2024-03-10", Time: "10:00"}
	})
	require.NoError(t, err)
	assert.Equal(t, 1, counts[http.StatusCreated])
	assert.Equal(t, 9, counts[http.StatusConflict])
}
