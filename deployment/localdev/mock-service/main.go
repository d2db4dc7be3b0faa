// Command mock-service emulates a Spring Boot actuator surface on a local
// port so healmon can be exercised without the real microservices. Metric
// values drift randomly and occasionally spike, which is enough to trip both
// the static thresholds and the anomaly model.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

type measurement struct {
	Statistic string  `json:"statistic"`
	Value     float64 `json:"value"`
}

type metricResponse struct {
	Name         string        `json:"name"`
	Measurements []measurement `json:"measurements"`
}

type simulator struct {
	mu           sync.Mutex
	rng          *rand.Rand
	responseTime float64
	cpu          float64
	memUsed      float64
	memMax       float64
	requests     float64
	errors4xx    float64
	errors5xx    float64
	spikeUntil   time.Time
}

func newSimulator(seed int64) *simulator {
	return &simulator{
		rng:          rand.New(rand.NewSource(seed)),
		responseTime: 0.35,
		cpu:          0.22,
		memUsed:      412 * 1024 * 1024,
		memMax:       1024 * 1024 * 1024,
	}
}

// step advances the simulated workload. Roughly one tick in forty starts a
// short degradation spike.
func (s *simulator) step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Before(s.spikeUntil) {
		s.responseTime = 2.5 + s.rng.Float64()
		s.cpu = 0.85 + 0.1*s.rng.Float64()
	} else {
		if s.rng.Intn(40) == 0 {
			s.spikeUntil = now.Add(90 * time.Second)
		}
		s.responseTime = 0.3 + 0.15*s.rng.Float64()
		s.cpu = 0.2 + 0.1*s.rng.Float64()
	}

	batch := 10 + s.rng.Float64()*30
	s.requests += batch
	s.errors4xx += batch * 0.01 * s.rng.Float64()
	s.errors5xx += batch * 0.005 * s.rng.Float64()
	s.memUsed = s.memMax * (0.35 + 0.1*s.rng.Float64())
}

func (s *simulator) metric(name string) (metricResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case "http.server.requests":
		return metricResponse{Name: name, Measurements: []measurement{
			{Statistic: "TOTAL_TIME", Value: s.responseTime},
			{Statistic: "COUNT", Value: s.requests},
		}}, true
	case "http.server.requests.4xx":
		return metricResponse{Name: name, Measurements: []measurement{{Statistic: "COUNT", Value: s.errors4xx}}}, true
	case "http.server.requests.5xx":
		return metricResponse{Name: name, Measurements: []measurement{{Statistic: "COUNT", Value: s.errors5xx}}}, true
	case "process.cpu.usage":
		return metricResponse{Name: name, Measurements: []measurement{{Statistic: "VALUE", Value: s.cpu}}}, true
	case "jvm.memory.used":
		return metricResponse{Name: name, Measurements: []measurement{{Statistic: "VALUE", Value: s.memUsed}}}, true
	case "jvm.memory.max":
		return metricResponse{Name: name, Measurements: []measurement{{Statistic: "VALUE", Value: s.memMax}}}, true
	}
	return metricResponse{}, false
}

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	seed := flag.Int64("seed", time.Now().UnixNano(), "workload seed")
	flag.Parse()

	sim := newSimulator(*seed)
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			sim.step()
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/actuator/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "UP"})
	})
	mux.HandleFunc("/actuator/metrics", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string][]string{"names": {
			"http.server.requests",
			"http.server.requests.4xx",
			"http.server.requests.5xx",
			"process.cpu.usage",
			"jvm.memory.used",
			"jvm.memory.max",
		}})
	})
	mux.HandleFunc("/actuator/metrics/", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/actuator/metrics/"):]
		payload, ok := sim.metric(name)
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, payload)
	})

	logger := log.New(log.Writer(), "mock-service ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    *addr,
		Handler: logRequests(logger, mux),
	}

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
