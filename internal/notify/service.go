package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"greensprint/internal/config"
)

const userAgent = "GreenSprint-Go/0.1.0"

// Event identifies a notification category. Each category maps to a config
// toggle so operators can mute noisy ones.
type Event string

const (
	EventTreeRegistered    Event = "tree_registered"
	EventScanRecorded      Event = "scan_recorded"
	EventAchievement       Event = "achievement"
	EventCampaignMilestone Event = "campaign_milestone"
	EventImportCompleted   Event = "import_completed"
	EventError             Event = "error"
	EventTest              Event = "test"
)

// Payload carries the template values for one notification.
type Payload map[string]string

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.enabled(event) {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) enabled(event Event) bool {
	switch event {
	case EventTreeRegistered:
		return n.settings.Trees
	case EventScanRecorded:
		return n.settings.Scans
	case EventAchievement:
		return n.settings.Achievements
	case EventCampaignMilestone:
		return n.settings.Campaigns
	case EventImportCompleted:
		return n.settings.Imports
	case EventError:
		return n.settings.Errors
	case EventTest:
		return true
	default:
		return false
	}
}

func format(event Event, payload Payload) (message, bool) {
	get := func(key string) string {
		return strings.TrimSpace(payload[key])
	}

	switch event {
	case EventTreeRegistered:
		species := get("species")
		code := get("code")
		body := fmt.Sprintf("New tree registered: %s (%s)", species, code)
		if planter := get("planter"); planter != "" {
			body = fmt.Sprintf("%s planted by %s", body, planter)
		}
		return message{
			title: "Green Sprint - Tree Registered",
			body:  body,
			tags:  []string{"greensprint", "tree", "registered"},
		}, true
	case EventScanRecorded:
		body := fmt.Sprintf("Tree scanned: %s (%s)", get("species"), get("code"))
		if scanner := get("scanner"); scanner != "" {
			body = fmt.Sprintf("%s by %s", body, scanner)
		}
		return message{
			title: "Green Sprint - Scan",
			body:  body,
			tags:  []string{"greensprint", "scan"},
		}, true
	case EventAchievement:
		return message{
			title:    "Green Sprint - Achievement",
			body:     fmt.Sprintf("%s earned %s", get("username"), get("achievement")),
			tags:     []string{"greensprint", "achievement"},
			priority: "high",
		}, true
	case EventCampaignMilestone:
		return message{
			title: "Green Sprint - Campaign Milestone",
			body: fmt.Sprintf("%s reached %s%%: %s of %s trees planted",
				get("campaign"), get("percent"), get("planted"), get("goal")),
			tags:     []string{"greensprint", "campaign", "milestone"},
			priority: "high",
		}, true
	case EventImportCompleted:
		imported := get("imported")
		failed := get("failed")
		body := fmt.Sprintf("Import complete: %s trees from %s", imported, get("file"))
		if failed != "" && failed != "0" {
			body = fmt.Sprintf("%s (%s rows failed)", body, failed)
		}
		return message{
			title: "Green Sprint - Import",
			body:  body,
			tags:  []string{"greensprint", "import", "completed"},
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("Error")
		if contextLabel := get("context"); contextLabel != "" {
			builder.WriteString(" with ")
			builder.WriteString(contextLabel)
		}
		builder.WriteString(": ")
		if errText := get("error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "Green Sprint - Error",
			body:     builder.String(),
			tags:     []string{"greensprint", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "Green Sprint - Test",
			body:     "Notification system test",
			tags:     []string{"greensprint", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
