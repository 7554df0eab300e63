package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/observability"
)

const (
	DefaultListenAddr = ":3000"
	SignatureHeader   = "x-adsk-signature"

	defaultRecent  = 50
	maxBodyBytes   = 1 << 20
	shutdownWindow = 5 * time.Second
)

// Options configures a [Receiver].
type Options struct {
	Store Store
	// Secret enables signature verification.
	Secret string
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
	// Buffer is the capacity of the Events channel.
	Buffer int
	Logger func(msg string, args ...any)
	// Now is the clock used for received_at.
	Now func() time.Time
}

// Receiver accepts event callbacks over HTTP.
type Receiver struct {
	store  Store
	secret []byte
	events chan Event
	logger func(string, ...any)
	now    func() time.Time
	router chi.Router
}

// NewReceiver builds a receiver. A nil store uses a [MemoryStore].
func NewReceiver(opts Options) *Receiver {
	if opts.Store == nil {
		opts.Store = NewMemoryStore(DefaultCapacity)
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Receiver{
		store:  opts.Store,
		events: make(chan Event, opts.Buffer),
		logger: opts.Logger,
		now:    opts.Now,
	}
	if opts.Secret != "" {
		r.secret = []byte(opts.Secret)
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Post("/", r.handleEvent)
	router.Get("/events", r.handleRecent)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	r.router = router
	return r
}

// Handler returns the HTTP handler.
func (r *Receiver) Handler() http.Handler { return r.router }

// Events delivers accepted events.
func (r *Receiver) Events() <-chan Event { return r.events }

// Serve listens on addr until ctx is cancelled.
func (r *Receiver) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultListenAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "shut down receiver")
	}
	return nil
}

func (r *Receiver) handleEvent(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	hooks := observability.Webhook()

	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		hooks.OnRejected(ctx, "body")
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !r.verify(req.Header.Get(SignatureHeader), body) {
		hooks.OnRejected(ctx, "signature")
		r.logger("rejected event with bad signature", "remote", req.RemoteAddr)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := ParseEvent(body, r.now())
	if err != nil {
		hooks.OnRejected(ctx, "payload")
		http.Error(w, errors.UserMessage(err), http.StatusBadRequest)
		return
	}
	if err := r.store.Save(ctx, event); err != nil {
		r.logger("failed to store event", "id", event.ID, "error", err)
		http.Error(w, "failed to store event", http.StatusInternalServerError)
		return
	}
	hooks.OnEvent(ctx, event.EventType)

	select {
	case r.events <- event:
	default:
		r.logger("event channel full, not forwarded", "id", event.ID)
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"id": event.ID})
}

func (r *Receiver) handleRecent(w http.ResponseWriter, req *http.Request) {
	limit := defaultRecent
	if s := req.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	events, err := r.store.Recent(req.Context(), limit)
	if err != nil {
		r.logger("failed to list events", "error", err)
		http.Error(w, "failed to list events", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (r *Receiver) verify(header string, body []byte) bool {
	if r.secret == nil {
		return true
	}
	got, ok := strings.CutPrefix(header, "sha1hash=")
	if !ok {
		return false
	}
	sig, err := hex.DecodeString(got)
	if err != nil {
		return false
	}
	return hmac.Equal(sig, Sign(r.secret, body))
}

// Sign returns the HMAC-SHA1 of body under secret.
func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha1.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
