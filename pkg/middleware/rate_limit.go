package middleware

import (
	"net/http"
	"sync"
	"time"

	"mediops/pkg/logger"
)

type PatientExtractor func(r *http.Request) string

// PatientRateLimiter throttles booking traffic per patient within a
// sliding window.
type PatientRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor PatientExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewPatientRateLimiter(limit int, window time.Duration, extractor PatientExtractor, log *logger.Logger) *PatientRateLimiter {
	limiter := &PatientRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *PatientRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for patient, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, patient)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *PatientRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *PatientRateLimiter) Allow(patientID string) bool {
	if patientID == "" {
		return true
	}

	now := time.Now()

	rl.mu.RLock()
	timestamps := rl.requests[patientID]
	rl.mu.RUnlock()

	validTimestamps := make([]time.Time, 0)
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			validTimestamps = append(validTimestamps, ts)
		}
	}

	if len(validTimestamps) >= rl.limit {
		return false
	}

	validTimestamps = append(validTimestamps, now)

	rl.mu.Lock()
	rl.requests[patientID] = validTimestamps
	rl.mu.Unlock()

	return true
}

func PatientRateLimit(limiter *PatientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			patientID := extractPatientID(r, limiter.extractor)

			if patientID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(patientID) {
				rejectRateLimited(w, limiter.log, r, patientID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractPatientID(r *http.Request, extractor PatientExtractor) string {
	if extractor == nil {
		return r.Header.Get("X-Patient-ID")
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, patientID string) {
	requestID := ""
	if rid := r.Context().Value(RequestIDKey); rid != nil {
		requestID = rid.(string)
	}

	log.Warn("Rate limit exceeded",
		"request_id", requestID,
		"patient_id", patientID,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

func DefaultPatientExtractor(r *http.Request) string {
	return r.Header.Get("X-Patient-ID")
}
