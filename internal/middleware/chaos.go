package middleware

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/apilab/apilab/internal/metrics"
	"github.com/apilab/apilab/internal/reqctx"
)

// Error playground headers.
const (
	PlaygroundHeader = "X-Error-Playground"
	ChaosLevelHeader = "X-Chaos-Level"
)

// DefaultChaosLevel is the injection probability used when chaos_level is
// absent or unparsable.
const DefaultChaosLevel = 0.1

const simulatedHint = "This is a simulated error from Error Playground. Turn it off in Settings."

// SimulatedError is one entry of the error playground catalog.
type SimulatedError struct {
	Type        string
	Status      int
	Message     string
	Explanation string
}

// Code returns the machine code reported for the error.
func (e SimulatedError) Code() string {
	return "SIMULATED_" + strings.ToUpper(e.Type)
}

// SimulatedErrors is the fixed catalog injected by the error playground.
var SimulatedErrors = []SimulatedError{
	{
		Type:        "timeout",
		Status:      http.StatusRequestTimeout,
		Message:     "Request Timeout - Server took too long to respond",
		Explanation: "This happens when the server is slow or overloaded. In production, implement retry logic.",
	},
	{
		Type:        "server_error",
		Status:      http.StatusInternalServerError,
		Message:     "Internal Server Error - Something went wrong on the server",
		Explanation: "Server-side bugs cause this. The client cannot fix it - the server team needs to debug.",
	},
	{
		Type:        "service_unavailable",
		Status:      http.StatusServiceUnavailable,
		Message:     "Service Unavailable - Server is temporarily down",
		Explanation: "Server is overloaded or under maintenance. Retry after a delay (exponential backoff).",
	},
	{
		Type:        "rate_limit",
		Status:      http.StatusTooManyRequests,
		Message:     "Too Many Requests - You've exceeded the rate limit",
		Explanation: "APIs limit request frequency. Implement rate limiting on client side or upgrade your plan.",
	},
	{
		Type:        "bad_gateway",
		Status:      http.StatusBadGateway,
		Message:     "Bad Gateway - Proxy or gateway error",
		Explanation: "The server received an invalid response from an upstream server. Temporary issue.",
	},
}

type simulatedErrorBody struct {
	Error       string `json:"error"`
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
	Simulated   bool   `json:"simulated"`
	Hint        string `json:"hint"`
}

// Rand is the randomness source used for injection decisions.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) IntN(n int) int   { return rand.IntN(n) }

// ChaosConfig holds configuration for the error playground middleware.
type ChaosConfig struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
	// MaxLatency caps simulate_latency. Zero means uncapped.
	MaxLatency time.Duration
	// Rand defaults to math/rand/v2.
	Rand Rand
}

// ChaosSettings are the per-request playground parameters.
type ChaosSettings struct {
	Enabled bool
	Level   float64
	Latency time.Duration
}

// ParseChaosSettings reads error_playground, chaos_level and
// simulate_latency from the query string.
func ParseChaosSettings(r *http.Request) ChaosSettings {
	q := r.URL.Query()

	settings := ChaosSettings{
		Enabled: strings.ToLower(q.Get("error_playground")) == "true",
		Level:   DefaultChaosLevel,
	}

	if raw := q.Get("chaos_level"); raw != "" {
		if level, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			settings.Level = level
		}
	}

	if raw := q.Get("simulate_latency"); raw != "" {
		if ms, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && ms > 0 {
			settings.Latency = time.Duration(ms) * time.Millisecond
		}
	}

	return settings
}

// Chaos returns the error playground middleware. When a request opts in it
// may sleep, and with probability chaos_level it answers with a simulated
// error without calling the next handler.
func Chaos(cfg ChaosConfig) func(http.Handler) http.Handler {
	if cfg.Rand == nil {
		cfg.Rand = globalRand{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if chaosExempt(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			settings := ParseChaosSettings(r)
			ctx, st := reqctx.Ensure(r.Context())
			st.ChaosEnabled = settings.Enabled
			st.ChaosLevel = settings.Level
			r = r.WithContext(ctx)

			if !settings.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(PlaygroundHeader, "enabled")
			w.Header().Set(ChaosLevelHeader, FormatChaosLevel(settings.Level))

			if latency := settings.Latency; latency > 0 {
				if cfg.MaxLatency > 0 && latency > cfg.MaxLatency {
					latency = cfg.MaxLatency
				}
				cfg.Metrics.IncChaosInjected("latency")

				timer := time.NewTimer(latency)
				select {
				case <-timer.C:
				case <-ctx.Done():
					timer.Stop()
					return
				}
			}

			if cfg.Rand.Float64() < settings.Level {
				simulated := SimulatedErrors[cfg.Rand.IntN(len(SimulatedErrors))]
				cfg.Metrics.IncChaosInjected("error")
				cfg.Logger.Debug("simulated error injected",
					slog.String("request_id", GetRequestID(ctx)),
					slog.String("code", simulated.Code()),
					slog.String("path", r.URL.Path),
				)

				writeJSON(w, simulated.Status, simulatedErrorBody{
					Error:       simulated.Message,
					Code:        simulated.Code(),
					Explanation: simulated.Explanation,
					Simulated:   true,
					Hint:        simulatedHint,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func chaosExempt(path string) bool {
	return strings.HasPrefix(path, "/static") || path == "/api/health"
}

// FormatChaosLevel renders a level the way it is echoed in X-Chaos-Level:
// the shortest round-trip form, integral values keep one decimal place
// ("1.0"), and magnitudes below 1e-4 or from 1e16 up use an exponent
// ("1e-05").
func FormatChaosLevel(level float64) string {
	switch {
	case math.IsNaN(level):
		return "nan"
	case math.IsInf(level, 1):
		return "inf"
	case math.IsInf(level, -1):
		return "-inf"
	}

	if level != 0 {
		sci := strconv.FormatFloat(level, 'e', -1, 64)
		exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
		if err == nil && (exp < -4 || exp >= 16) {
			return sci
		}
	}

	s := strconv.FormatFloat(level, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
