package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	jobName         = "onboarding_dashboard"
	consoleTimeForm = "2006-01-02 15:04:05.000"
)

// Rotation bounds the log file kept by SetupLogger.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var DefaultRotation = Rotation{MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28}

var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: color.New(color.FgCyan),
	slog.LevelInfo:  color.New(color.FgGreen),
	slog.LevelWarn:  color.New(color.FgYellow),
	slog.LevelError: color.New(color.FgRed),
}

var timeColor = color.New(color.FgBlue)

// Handler tees records: JSON lines go to the file, a colored one-liner to the console.
type Handler struct {
	file    slog.Handler
	console io.Writer
	attrs   []slog.Attr
}

func NewHandler(console, file io.Writer, level slog.Leveler) *Handler {
	return &Handler{
		file: slog.NewJSONHandler(file, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: fileAttr,
		}),
		console: console,
	}
}

func fileAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		return slog.String("timestamp", a.Value.Time().Format(time.RFC3339))
	case "":
		return slog.String("job", jobName)
	}

	return a
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.file.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.file.Handle(ctx, r); err != nil {
		return err
	}

	_, err := io.WriteString(h.console, h.consoleLine(r))
	return err
}

func (h *Handler) consoleLine(r slog.Record) string {
	c, ok := levelColors[r.Level]
	if !ok {
		c = color.New(color.FgWhite)
	}

	var b strings.Builder
	b.WriteString(timeColor.Sprint(r.Time.Format(consoleTimeForm)))
	b.WriteByte(' ')
	b.WriteString(c.Sprintf("%-6s", r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	writeAttr := func(a slog.Attr) bool {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(a.Value.String())
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	r.Attrs(writeAttr)

	b.WriteByte('\n')

	return b.String()
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.file = h.file.WithAttrs(attrs)
	next.attrs = append(slices.Clip(h.attrs), attrs...)

	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	next := *h
	next.file = h.file.WithGroup(name)

	return &next
}

// SetupLogger writes JSON to a rotated file at path and echoes every record to console.
func SetupLogger(console io.Writer, path string, level slog.Level) (*slog.Logger, error) {
	if path == "" {
		return nil, errors.New("log file path is empty")
	}

	rot := DefaultRotation
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSizeMB,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAgeDays,
		Compress:   true,
	}

	return slog.New(NewHandler(console, file, level)), nil
}

// AccessLog logs one "HTTP request" record per request, tagged with the chi request id.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			id := middleware.GetReqID(r.Context())
			if id == "" {
				id = "unknown"
			}

			logger.LogAttrs(r.Context(), slog.LevelInfo, "HTTP request",
				slog.String("request_id", id),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(started)),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
			)
		})
	}
}

// RequestCounter counts requests by chi route pattern, method and status.
func RequestCounter(reg prometheus.Registerer) func(http.Handler) http.Handler {
	requests := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served by the gateway.",
	}, []string{"path", "method", "status"})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			requests.WithLabelValues(routePattern(r), r.Method, strconv.Itoa(ww.Status())).Inc()
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return r.URL.Path
}
