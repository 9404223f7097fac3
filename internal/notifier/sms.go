// Package notifier sends customer-facing SMS through an HTTP gateway.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// SMSClient posts messages to the gateway's bulk-messaging endpoint.
type SMSClient struct {
	endpoint   string
	username   string
	senderID   string
	apiKey     string
	httpClient *http.Client
}

func NewSMSClient(endpoint, username, senderID, apiKey string, httpClient *http.Client) *SMSClient {
	return &SMSClient{
		endpoint:   endpoint,
		username:   username,
		senderID:   senderID,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

type smsResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// Send delivers one message to one phone number. A non-2xx gateway
// response is an error; the caller decides whether the failure matters.
func (c *SMSClient) Send(ctx context.Context, phone, message string) error {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("to", phone)
	form.Set("message", message)
	form.Set("from", c.senderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var gw smsResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&gw); decodeErr == nil && gw.SMSMessageData.Message != "" {
			return fmt.Errorf("sms gateway status %d: %s", resp.StatusCode, gw.SMSMessageData.Message)
		}
		return fmt.Errorf("sms gateway status %d", resp.StatusCode)
	}

	return nil
}
