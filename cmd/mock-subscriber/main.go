// mock-subscriber is a standalone endpoint server for exercising the
// dispatch retry policy by hand: success, permanent failure, a flaky
// endpoint that recovers within the retry budget, and one slower than the
// per-attempt timeout.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"
)

var (
	requestCount atomic.Int64
	flakyCount   atomic.Int64
)

func main() {
	port := "9090"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}

	// Always 200.
	http.HandleFunc("/webhook/success", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		logRequest(r, count, http.StatusOK)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "received"})
	})

	// Always 500 — drives a delivery to its terminal FAILED state.
	http.HandleFunc("/webhook/fail", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		logRequest(r, count, http.StatusInternalServerError)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
	})

	// 503 twice, then 200 — succeeds on the third attempt of a
	// three-attempt policy.
	http.HandleFunc("/webhook/flaky", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)

		w.Header().Set("Content-Type", "application/json")
		if flakyCount.Add(1)%3 == 0 {
			logRequest(r, count, http.StatusOK)
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "received (third time lucky)"})
			return
		}
		logRequest(r, count, http.StatusServiceUnavailable)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "service unavailable"})
	})

	// Delays past the default 10s per-attempt timeout.
	http.HandleFunc("/webhook/slow", func(w http.ResponseWriter, r *http.Request) {
		count := requestCount.Add(1)
		time.Sleep(12 * time.Second)
		logRequest(r, count, http.StatusOK)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "received (slow)"})
	})

	http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int64{"total_requests": requestCount.Load()})
	})

	log.Printf("Mock subscriber server starting on :%s", port)
	log.Printf("  POST /webhook/success  -> 200 OK")
	log.Printf("  POST /webhook/fail     -> 500")
	log.Printf("  POST /webhook/flaky    -> 503, 503, 200, ...")
	log.Printf("  POST /webhook/slow     -> 200 OK (12s delay)")
	log.Printf("  GET  /stats            -> request counter")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func logRequest(r *http.Request, count int64, status int) {
	log.Printf("[%d] %s %s -> %d", count, r.Method, r.URL.Path, status)
}
