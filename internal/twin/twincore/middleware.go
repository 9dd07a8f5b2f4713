package twincore

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RequestLogEntry captures one handled request for admin inspection.
// Bearer records whether the request carried an "Authorization: Bearer"
// header, which is how a ServeRest session is presented.
type RequestLogEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Bearer     bool              `json:"bearer"`
	Headers    map[string]string `json:"headers,omitempty"`
	StatusCode int               `json:"status_code"`
	Duration   time.Duration     `json:"duration"`
}

// RequestLog is a thread-safe ring buffer of recent requests.
type RequestLog struct {
	mu      sync.RWMutex
	entries []RequestLogEntry
	maxSize int
}

// NewRequestLog creates a request log holding at most maxSize entries.
func NewRequestLog(maxSize int) *RequestLog {
	return &RequestLog{
		entries: make([]RequestLogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends an entry, evicting the oldest at capacity.
func (rl *RequestLog) Add(entry RequestLogEntry) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.entries) >= rl.maxSize {
		rl.entries = rl.entries[1:]
	}
	rl.entries = append(rl.entries, entry)
}

// Entries returns a copy of all entries, oldest first.
func (rl *RequestLog) Entries() []RequestLogEntry {
	return rl.Filter("", "")
}

// Filter returns the entries with the given method whose path starts with
// pathPrefix, oldest first. Empty arguments match everything, so
// Filter("DELETE", "/usuarios/") lists the user deletions a suite sent.
func (rl *RequestLog) Filter(method, pathPrefix string) []RequestLogEntry {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	out := make([]RequestLogEntry, 0, len(rl.entries))
	for _, e := range rl.entries {
		if method != "" && !strings.EqualFold(e.Method, method) {
			continue
		}
		if !strings.HasPrefix(e.Path, pathPrefix) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Clear removes all entries.
func (rl *RequestLog) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = rl.entries[:0]
}

// FaultConfig describes a fault injected for one endpoint path.
// Body is written verbatim; Message wraps its text in the {"message": ...}
// envelope; with neither, the twin's ErrorBody answers. Drop closes the
// connection without a response, which clients observe as a transport
// error.
type FaultConfig struct {
	StatusCode int           `json:"status_code,omitempty"`
	Body       string        `json:"body,omitempty"`
	Message    string        `json:"message,omitempty"`
	Delay      time.Duration `json:"delay,omitempty"` // nanoseconds
	Drop       bool          `json:"drop,omitempty"`
	Rate       float64       `json:"rate"`
}

// FaultRegistry holds injected faults keyed by exact request path.
type FaultRegistry struct {
	mu     sync.RWMutex
	faults map[string]FaultConfig
}

// NewFaultRegistry creates an empty registry.
func NewFaultRegistry() *FaultRegistry {
	return &FaultRegistry{faults: make(map[string]FaultConfig)}
}

// Set injects a fault for path. A zero rate means always.
func (fr *FaultRegistry) Set(path string, fault FaultConfig) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fault.Rate == 0 {
		fault.Rate = 1.0
	}
	fr.faults[path] = fault
}

// Remove deletes the fault for path and reports whether one existed.
func (fr *FaultRegistry) Remove(path string) bool {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	_, existed := fr.faults[path]
	delete(fr.faults, path)
	return existed
}

// Check returns the fault that fires for path, or nil.
func (fr *FaultRegistry) Check(path string) *FaultConfig {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	if f, ok := fr.faults[path]; ok {
		if f.Rate >= 1.0 || rand.Float64() < f.Rate {
			return &f
		}
	}
	return nil
}

// All returns a copy of every registered fault.
func (fr *FaultRegistry) All() map[string]FaultConfig {
	fr.mu.RLock()
	defer fr.mu.RUnlock()
	out := make(map[string]FaultConfig, len(fr.faults))
	for k, v := range fr.faults {
		out[k] = v
	}
	return out
}

// Reset clears all faults.
func (fr *FaultRegistry) Reset() {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.faults = make(map[string]FaultConfig)
}

// ErrorBodyFunc returns the body a twin answers a failing status with.
type ErrorBodyFunc func(status int) any

// StatusTextBody is the default ErrorBodyFunc: {"message": "<status text>"}.
func StatusTextBody(status int) any {
	return map[string]string{"message": http.StatusText(status)}
}

// Middleware bundles the middleware shared by every twin.
type Middleware struct {
	cfg    *Config
	logger *slog.Logger
	ReqLog *RequestLog
	Faults *FaultRegistry
	// ErrorBody shapes injected and random failures in the twinned
	// service's own format. Nil means StatusTextBody.
	ErrorBody ErrorBodyFunc
}

// NewMiddleware creates a Middleware bound to cfg.
func NewMiddleware(cfg *Config, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Middleware{
		cfg:    cfg,
		logger: logger,
		ReqLog: NewRequestLog(1000),
		Faults: NewFaultRegistry(),
	}
}

// Name is the twin name from the config.
func (m *Middleware) Name() string {
	return m.cfg.Name
}

func (m *Middleware) errorBody(status int) any {
	if m.ErrorBody == nil {
		return StatusTextBody(status)
	}
	return m.ErrorBody(status)
}

// CORS adds permissive CORS headers.
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written downstream.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// RequestLog records every request into the ring buffer.
func (m *Middleware) RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		entry := RequestLogEntry{
			Timestamp:  start,
			Method:     r.Method,
			Path:       r.URL.Path,
			Bearer:     strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "),
			StatusCode: rec.statusCode,
			Duration:   time.Since(start),
		}
		if m.cfg.Verbose {
			entry.Headers = make(map[string]string)
			for k := range r.Header {
				entry.Headers[k] = r.Header.Get(k)
			}
		}
		m.ReqLog.Add(entry)

		m.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.statusCode,
			"bearer", entry.Bearer,
			"duration", entry.Duration,
		)
	})
}

// LatencyInjection delays every request by the configured latency ±20%.
func (m *Middleware) LatencyInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.cfg.Latency > 0 {
			jitter := 0.8 + rand.Float64()*0.4
			time.Sleep(time.Duration(float64(m.cfg.Latency) * jitter))
		}
		next.ServeHTTP(w, r)
	})
}

// RandomFailure answers 500 for a configured fraction of requests.
func (m *Middleware) RandomFailure(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.cfg.FailRate > 0 && rand.Float64() < m.cfg.FailRate {
			JSON(w, http.StatusInternalServerError, m.errorBody(http.StatusInternalServerError))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FaultInjection applies registered faults. Mount it inside the API route
// groups only, so the admin endpoints stay reachable.
func (m *Middleware) FaultInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fault := m.Faults.Check(r.URL.Path)
		if fault == nil {
			next.ServeHTTP(w, r)
			return
		}
		if fault.Delay > 0 {
			time.Sleep(fault.Delay)
		}
		if fault.Drop {
			conn, _, err := http.NewResponseController(w).Hijack()
			if err == nil {
				conn.Close()
				return
			}
			m.logger.Warn("drop fault could not hijack connection", "err", err)
		}
		if fault.StatusCode > 0 {
			switch {
			case fault.Body != "":
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(fault.StatusCode)
				fmt.Fprint(w, fault.Body)
			case fault.Message != "":
				Message(w, fault.StatusCode, fault.Message)
			default:
				JSON(w, fault.StatusCode, m.errorBody(fault.StatusCode))
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
