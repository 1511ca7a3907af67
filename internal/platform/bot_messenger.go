// Package platform holds the chat-gateway glue behind the core's Messenger
// port. The core never imports this package; cmd/server wires it in.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wanty-app/wishfeed/internal/service"
)

// BotMessenger delivers messages through the chat platform's HTTP gateway.
type BotMessenger struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewBotMessenger(endpoint, token string) *BotMessenger {
	return &BotMessenger{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type outboundMessage struct {
	ChatID    string   `json:"chat_id"`
	MessageID string   `json:"message_id,omitempty"`
	Text      string   `json:"text"`
	Actions   []string `json:"actions,omitempty"`
}

func (m *BotMessenger) SendMessage(ctx context.Context, recipientID, text string, actions []string) error {
	return m.post(ctx, "sendMessage", outboundMessage{ChatID: recipientID, Text: text, Actions: actions})
}

func (m *BotMessenger) EditMessage(ctx context.Context, recipientID, messageID, text string, actions []string) error {
	return m.post(ctx, "editMessage", outboundMessage{ChatID: recipientID, MessageID: messageID, Text: text, Actions: actions})
}

func (m *BotMessenger) post(ctx context.Context, method string, msg outboundMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/%s", m.endpoint, m.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusForbidden:
		// the platform reports blocked senders with 403
		return service.ErrRecipientBlocked
	case resp.StatusCode >= 300:
		return fmt.Errorf("messenger %s: unexpected status %d", method, resp.StatusCode)
	}
	return nil
}
