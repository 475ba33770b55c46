package notify

import (
	"context"
	"net/http"
	"time"
)

// discordDescriptionLimit is the API cap on one embed description.
const discordDescriptionLimit = 4096

// discordWebhook is the webhook execute request body. Each notification goes
// out as a single embed so the title and body stay separate fields instead of
// being glued into one content string.
type discordWebhook struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DiscordSender delivers notifications via a Discord webhook.
type DiscordSender struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordSender creates a DiscordSender for the given webhook URL. It uses
// a default HTTP client with a 10-second timeout.
func NewDiscordSender(webhookURL string) *DiscordSender {
	return &DiscordSender{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts the notification as one embed. Messages over the embed cap are
// truncated, not split. Discord returns 204 No Content on success.
func (d *DiscordSender) Send(ctx context.Context, title, message string) error {
	if len(message) > discordDescriptionLimit {
		message = message[:discordDescriptionLimit-3] + "..."
	}
	payload := discordWebhook{
		Username: "tradeup-bot",
		Embeds:   []discordEmbed{{Title: title, Description: message}},
	}
	return postJSON(ctx, d.client, "discord", d.webhookURL, payload)
}

// Name returns the sender identifier.
func (d *DiscordSender) Name() string {
	return "discord"
}
