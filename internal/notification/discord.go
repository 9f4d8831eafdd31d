// Package notification reports run outcomes to Discord webhooks.
package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coastal-guardian/shoreline-stats/internal/properties"
)

const (
	colorRed    = 16711680
	colorGreen  = 65280
	colorYellow = 16776960
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// Notifier posts to the error and success webhooks. An empty URL disables
// that kind of message.
type Notifier struct {
	ErrorURL   string
	SuccessURL string
	Client     *http.Client
}

// FromEnv builds a Notifier from the webhook variables of the environment.
func FromEnv() *Notifier {
	return &Notifier{
		ErrorURL:   properties.DiscordErrorNotificationUrl(),
		SuccessURL: properties.DiscordSuccessNotificationUrl(),
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Error(studyArea string, runErr error) error {
	return n.send(n.ErrorURL, DiscordEmbed{
		Title:       "🚨 Shoreline run failed",
		Description: fmt.Sprintf("Study area %s failed: %v", studyArea, runErr),
		Color:       colorRed,
	})
}

func (n *Notifier) Success(studyArea, summary string) error {
	return n.send(n.SuccessURL, DiscordEmbed{
		Title:       "✅ Shoreline run finished",
		Description: fmt.Sprintf("Study area %s\n\n%s", studyArea, summary),
		Color:       colorGreen,
	})
}

// Warn goes to the error webhook.
func (n *Notifier) Warn(studyArea, message string) error {
	return n.send(n.ErrorURL, DiscordEmbed{
		Title:       "⚠️ Shoreline run warning",
		Description: fmt.Sprintf("Study area %s: %s", studyArea, message),
		Color:       colorYellow,
	})
}

func (n *Notifier) send(url string, embed DiscordEmbed) error {
	if url == "" {
		return nil
	}
	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}
	return nil
}
