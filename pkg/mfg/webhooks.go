package mfg

import (
	"context"

	"github.com/matzehuels/fusiongraph/pkg/errors"
)

// DefaultEventType is the event monitored when none is configured.
const DefaultEventType = "MILESTONE_CREATED"

// Webhook is a server-side event subscription.
type Webhook struct {
	ID          string `json:"id"`
	EventType   string `json:"eventType"`
	CallbackURL string `json:"callbackUrl"`
	Status      string `json:"status"`
}

// Subscription describes a webhook to create.
type Subscription struct {
	EventType   string
	CallbackURL string
	Secret      string // optional; echoed by the server for verification
}

type webhooksResponse struct {
	Webhooks *page[Webhook] `json:"webhooks"`
}

type componentRoot struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Webhooks lists the subscriptions of this client for eventType.
func (c *Client) Webhooks(ctx context.Context, eventType string) ([]Webhook, error) {
	var resp webhooksResponse
	if err := c.q.Do(ctx, webhooksQuery.Request(map[string]any{"eventType": eventType}), &resp); err != nil {
		return nil, err
	}
	if resp.Webhooks == nil {
		return nil, malformed(webhooksQuery.Name(), "webhooks")
	}
	return resp.Webhooks.Results, nil
}

// DeleteWebhook removes one subscription.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	if err := c.q.Do(ctx, deleteWebhookMutation.Request(map[string]any{"webhookId": id}), nil); err != nil {
		return err
	}
	c.logger("deleted webhook", "id", id)
	return nil
}

// Unsubscribe deletes every subscription for eventType and returns how
// many were removed.
func (c *Client) Unsubscribe(ctx context.Context, eventType string) (int, error) {
	hooks, err := c.Webhooks(ctx, eventType)
	if err != nil {
		return 0, err
	}
	for i, h := range hooks {
		if err := c.DeleteWebhook(ctx, h.ID); err != nil {
			return i, err
		}
	}
	return len(hooks), nil
}

// Subscribe resolves key and creates a subscription scoped to the design.
func (c *Client) Subscribe(ctx context.Context, key LookupKey, sub Subscription) (*Webhook, error) {
	if sub.EventType == "" {
		sub.EventType = DefaultEventType
	}
	if err := errors.ValidateURL(sub.CallbackURL); err != nil {
		return nil, err
	}
	res, err := lookup[componentRoot](ctx, c.q, key, componentLookupQuery.Request)
	if err != nil {
		return nil, err
	}

	input := map[string]any{
		"eventType":   sub.EventType,
		"callbackUrl": sub.CallbackURL,
		"hubId":       res.HubID,
		"projectId":   res.ProjectID,
		"componentId": res.ItemID,
	}
	if sub.Secret != "" {
		input["secretToken"] = sub.Secret
	}

	var resp struct {
		CreateWebhook *struct {
			Webhook *Webhook `json:"webhook"`
		} `json:"createWebhook"`
	}
	if err := c.q.Do(ctx, createWebhookMutation.Request(map[string]any{"input": input}), &resp); err != nil {
		return nil, err
	}
	if resp.CreateWebhook == nil || resp.CreateWebhook.Webhook == nil || resp.CreateWebhook.Webhook.ID == "" {
		return nil, malformed(createWebhookMutation.Name(), "createWebhook.webhook")
	}
	wh := resp.CreateWebhook.Webhook
	c.logger("subscribed", "event", wh.EventType, "id", wh.ID, "component", res.Root.Name)
	return wh, nil
}
