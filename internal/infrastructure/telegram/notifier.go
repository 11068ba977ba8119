package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"TripIdeas/internal/domain"
	"TripIdeas/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier posts idea milestones to a Telegram chat via bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.EventSink = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. An empty apiBase uses the public API.
func NewNotifier(apiBase, botToken, chatID string) *Notifier {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Notifier{
		apiBase:  strings.TrimRight(apiBase, "/"),
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish sends a Markdown message for events worth a chat notification and ignores the rest.
func (n *Notifier) Publish(ctx context.Context, event domain.Event) error {
	text, ok := message(event)
	if !ok {
		return nil
	}
	return n.send(ctx, text)
}

func message(event domain.Event) (string, bool) {
	switch event.Type {
	case domain.EventIdeaCreated:
		prompt, _ := event.Payload["prompt"].(string)
		return fmt.Sprintf("*New trip idea*\n%s", escape(prompt)), true
	case domain.EventMoodboardCompleted:
		var tags []string
		if v, ok := event.Payload["tags"].([]string); ok {
			tags = v
		}
		text := fmt.Sprintf("*Moodboard ready* for idea `%s`", event.IdeaID)
		if len(tags) > 0 {
			text += "\n" + escape(strings.Join(tags, ", "))
		}
		return text, true
	}
	return "", false
}

// escape neutralizes legacy Markdown control characters.
func escape(s string) string {
	return strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[").Replace(s)
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram error: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return nil
}
