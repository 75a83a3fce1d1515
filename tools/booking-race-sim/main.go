package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type bookingRequest struct {
	ClientID           string `json:"client_id"`
	ConsultantID       string `json:"consultant_id"`
	ConsultationTypeID string `json:"consultation_type_id"`
	Date               string `json:"date"`
	Time               string `json:"time"`
}

func main() {
	var (
		baseURL    = flag.String("base-url", getenv("BASE_URL", "http://localhost:8080"), "consulting-service base url")
		consultant = flag.String("consultant", getenv("CONSULTANT_ID", "c-100"), "consultant id")
		typeID     = flag.String("type", getenv("CONSULTATION_TYPE_ID", "hr-audit"), "consultation type id")
		date       = flag.String("date", getenv("BOOKING_DATE", ""), "booking date (YYYY-MM-DD)")
		clock      = flag.String("time", getenv("BOOKING_TIME", "10:00"), "booking start (HH:MM)")
		requests   = flag.Int("n", 20, "concurrent booking attempts")
		timeout    = flag.Duration("timeout", 10*time.Second, "per request timeout")
	)
	flag.Parse()

	if strings.TrimSpace(*date) == "" {
		fatal("BOOKING_DATE is required")
	}
	if *requests <= 0 {
		fatal("-n must be positive")
	}

	counts, err := race(context.Background(), strings.TrimRight(*baseURL, "/")+"/api/v1/bookings", *requests, *timeout,
		func(i int) bookingRequest {
			return bookingRequest{
				ClientID:           fmt.Sprintf("race-client-%d", i),
				ConsultantID:       *consultant,
				ConsultationTypeID: *typeID,
				Date:               *date,
				Time:               *clock,
			}
		})
	if err != nil {
		fatal(err.Error())
	}

	codes := make([]int, 0, len(counts))
	for code := range counts {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		fmt.Printf("status=%d count=%d\n", code, counts[code])
	}
	if counts[http.StatusCreated] != 1 {
		fatal(fmt.Sprintf("expected exactly one booking to succeed, got %d", counts[http.StatusCreated]))
	}
}

// race posts n bookings at once and tallies response codes.
func race(ctx context.Context, url string, n int, timeout time.Duration, build func(i int) bookingRequest) (map[int]int, error) {
	client := &http.Client{Timeout: timeout}
	var (
		mu     sync.Mutex
		counts = map[int]int{}
		start  = make(chan struct{})
	)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		body, err := json.Marshal(build(i))
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			<-start
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := client.Do(req)
			if err != nil {
				return err
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			mu.Lock()
			counts[resp.StatusCode]++
			mu.Unlock()
			return nil
		})
	}
	close(start)
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
