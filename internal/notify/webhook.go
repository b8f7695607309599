package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type WebhookSender struct {
	URL      string
	Token    string
	ShopName string
	Client   *http.Client
}

func NewWebhookSender(url, token, shop string) *WebhookSender {
	return &WebhookSender{
		URL:      url,
		Token:    token,
		ShopName: shop,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Text    string        `json:"text"`
	OrderID uint          `json:"order_id"`
	Total   string        `json:"total"`
	Items   []LineSummary `json:"items"`
}

func (s *WebhookSender) Send(ctx context.Context, n Notification) error {
	payload := webhookPayload{
		Text:    ChatText(s.ShopName, n.Order),
		OrderID: n.Order.OrderID,
		Total:   n.Order.Total.StringFixed(0),
		Items:   n.Order.Items,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return nil
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		return fmt.Errorf("webhook: status %d", res.StatusCode)
	default:
		return backoff.Permanent(fmt.Errorf("webhook: status %d", res.StatusCode))
	}
}

// ChatText is the short plain-text message posted to the shop chat.
func ChatText(shop string, o OrderSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Đơn hàng mới #%d\n", shop, o.OrderID)
	fmt.Fprintf(&b, "Khách hàng: %s", o.CustomerName)
	if o.CustomerPhone != "" {
		fmt.Fprintf(&b, " - %s", o.CustomerPhone)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Sản phẩm: %s\n", o.ItemsLine())
	fmt.Fprintf(&b, "Tổng tiền: %s", FormatVND(o.Total))
	if o.ShippingAddress != "" {
		fmt.Fprintf(&b, "\nĐịa chỉ: %s", o.ShippingAddress)
	}
	return b.String()
}
