package cli

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fusiongraph/pkg/errors"
	"github.com/matzehuels/fusiongraph/pkg/mfg"
	"github.com/matzehuels/fusiongraph/pkg/observability"
	"github.com/matzehuels/fusiongraph/pkg/webhook"
)

// cleanupTimeout bounds deleting the subscription after Ctrl+C.
const cleanupTimeout = 15 * time.Second

type watchOpts struct {
	listen      string
	callbackURL string
	eventType   string
	keep        bool
	plain       bool
}

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	opts := watchOpts{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show events of a design as they happen",
		Long: `Subscribe to events of a design and show them as they arrive.

Existing subscriptions of the event type are removed first. The API delivers
events to --callback-url, which must reach the local listener, for example
through a tunnel:

  ngrok http 3000
  fusiongraph watch --callback-url https://<id>.ngrok.app

The listener also serves GET /events, /metrics and /healthz. The
subscription is deleted on exit unless --keep is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", "", "listen address (default from config, :3000)")
	cmd.Flags().StringVar(&opts.callbackURL, "callback-url", "", "public URL forwarding to the listener")
	cmd.Flags().StringVar(&opts.eventType, "event-type", "", "event type (default "+mfg.DefaultEventType+")")
	cmd.Flags().BoolVar(&opts.keep, "keep", false, "keep the subscription on exit")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "log events instead of showing the live table")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, opts watchOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	opts.listen = firstNonEmpty(opts.listen, cfg.Webhook.Listen, webhook.DefaultListenAddr)
	opts.callbackURL = firstNonEmpty(opts.callbackURL, cfg.Webhook.CallbackURL)
	opts.eventType = firstNonEmpty(opts.eventType, cfg.Webhook.EventType, mfg.DefaultEventType)
	if opts.callbackURL == "" {
		return errors.New(errors.ErrCodeInvalidInput,
			"a public callback URL is required (--callback-url, webhook.callback_url or %s)", envCallbackURL)
	}

	key, err := c.lookupKey(cfg)
	if err != nil {
		return err
	}
	client, closeClient, err := c.newClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeClient()

	store, err := c.eventStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.WithoutCancel(ctx)) }()

	removed, err := client.Unsubscribe(ctx, opts.eventType)
	if err != nil {
		return err
	}
	if removed > 0 {
		c.Logger.Info("removed existing subscriptions", "event_type", opts.eventType, "count", removed)
	}

	hook, err := client.Subscribe(ctx, key, mfg.Subscription{
		EventType:   opts.eventType,
		CallbackURL: opts.callbackURL,
		Secret:      cfg.Webhook.Secret,
	})
	if err != nil {
		return err
	}
	c.Logger.Info("subscribed", "id", hook.ID, "event_type", hook.EventType, "component", key.Component)
	if !opts.keep {
		defer c.unsubscribe(ctx, client, hook.ID)
	}

	metrics := observability.NewMetrics(nil)
	metrics.Install()
	defer observability.Reset()

	receiver := webhook.NewReceiver(webhook.Options{
		Store:   store,
		Secret:  cfg.Webhook.Secret,
		Metrics: metrics.Handler(),
		Logger: func(msg string, args ...any) {
			c.Logger.Warn(msg, args...)
		},
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return receiver.Serve(gctx, opts.listen)
	})
	g.Go(func() error {
		defer cancel()
		header := watchHeader{
			Component:   key.String(),
			EventType:   opts.eventType,
			Listen:      opts.listen,
			CallbackURL: opts.callbackURL,
		}
		if opts.plain {
			return c.logEvents(gctx, receiver.Events(), header)
		}
		return showEvents(gctx, receiver.Events(), header)
	})
	return g.Wait()
}

func (c *CLI) eventStore(ctx context.Context, cfg *Config) (webhook.Store, error) {
	if cfg.Webhook.MongoURI == "" {
		return webhook.NewMemoryStore(webhook.DefaultCapacity), nil
	}
	return webhook.NewMongoStore(ctx, cfg.Webhook.MongoURI, cfg.Webhook.MongoDatabase)
}

// unsubscribe deletes the subscription even after ctx was cancelled.
func (c *CLI) unsubscribe(ctx context.Context, client *mfg.Client, id string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := client.DeleteWebhook(ctx, id); err != nil {
		c.Logger.Error("failed to delete subscription", "id", id, "error", err)
		return
	}
	c.Logger.Info("deleted subscription", "id", id)
}

// logEvents writes one log line per event until ctx is done.
func (c *CLI) logEvents(ctx context.Context, events <-chan webhook.Event, h watchHeader) error {
	c.Logger.Info("waiting for events", "component", h.Component, "event_type", h.EventType, "listen", h.Listen)
	for {
		select {
		case <-ctx.Done():
			return nil
		case e := <-events:
			c.Logger.Info("event", "type", e.EventType, "id", e.ID, "subject", e.Summary())
		}
	}
}

// showEvents runs the live table until the user quits or ctx is done.
func showEvents(ctx context.Context, events <-chan webhook.Event, h watchHeader) error {
	p := tea.NewProgram(newEventsModel(events, h), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
