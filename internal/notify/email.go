package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/wneessen/go-mail"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrNoRecipient = errors.New("notification has no recipient")

var vietnamTime = time.FixedZone("ICT", 7*60*60)

var vnd = message.NewPrinter(language.Vietnamese)

type Mailer interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

func NewSMTPClient(host string, port int, user, password string) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(user),
			mail.WithPassword(password),
		)
	}
	return mail.NewClient(host, opts...)
}

type EmailSender struct {
	Client   Mailer
	From     string
	ShopName string
}

func (s *EmailSender) Send(ctx context.Context, n Notification) error {
	if n.Recipient == "" {
		return backoff.Permanent(fmt.Errorf("%w: %s", ErrNoRecipient, n.ID))
	}

	var (
		subject string
		tpl     *template.Template
	)
	switch n.Kind {
	case KindAdminEmail:
		subject = fmt.Sprintf("Đơn hàng mới #%d - %s", n.Order.OrderID, n.Order.CustomerName)
		tpl = adminTemplate
	case KindCustomerEmail:
		subject = fmt.Sprintf("Xác nhận đơn hàng #%d - %s", n.Order.OrderID, s.ShopName)
		tpl = customerTemplate
	default:
		return backoff.Permanent(fmt.Errorf("%w: %q", ErrUnknownKind, n.Kind))
	}

	body, err := renderEmail(tpl, s.ShopName, n.Order)
	if err != nil {
		return backoff.Permanent(err)
	}

	m := mail.NewMsg()
	if err := m.From(s.From); err != nil {
		return backoff.Permanent(fmt.Errorf("mail from: %w", err))
	}
	if err := m.To(n.Recipient); err != nil {
		return backoff.Permanent(fmt.Errorf("mail to: %w", err))
	}
	m.Subject(subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, body)

	return s.Client.DialAndSendWithContext(ctx, m)
}

type emailData struct {
	Shop  string
	Order OrderSummary
}

func renderEmail(tpl *template.Template, shop string, o OrderSummary) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, emailData{Shop: shop, Order: o}); err != nil {
		return "", fmt.Errorf("render %s: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}

// FormatVND renders an amount the way Vietnamese shops print prices, e.g. "200.000 ₫".
func FormatVND(d decimal.Decimal) string {
	return vnd.Sprintf("%d", d.Round(0).IntPart()) + " ₫"
}

func FormatLocalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(vietnamTime).Format("02/01/2006 15:04")
}

var emailFuncs = template.FuncMap{
	"vnd":  FormatVND,
	"when": FormatLocalTime,
	"deref": func(t *time.Time) time.Time {
		if t == nil {
			return time.Time{}
		}
		return *t
	},
}

var adminTemplate = template.Must(template.New("admin_email").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif">
<h2>Đơn hàng mới #{{.Order.OrderID}}</h2>
<p>Thời gian đặt: {{when .Order.CreatedAt}}</p>
<h3>Thông tin khách hàng</h3>
<ul>
<li>Khách hàng: {{.Order.CustomerName}}</li>
{{if .Order.CustomerPhone}}<li>Điện thoại: {{.Order.CustomerPhone}}</li>{{end}}
{{if .Order.CustomerEmail}}<li>Email: {{.Order.CustomerEmail}}</li>{{end}}
<li>Người nhận: {{.Order.ReceiverName}} ({{.Order.ReceiverPhone}})</li>
<li>Địa chỉ: {{.Order.ShippingAddress}}</li>
{{with .Order.DeliveryTime}}<li>Thời gian nhận hàng: {{when (deref .)}}</li>{{end}}
{{if .Order.PaymentMethod}}<li>Thanh toán: {{.Order.PaymentMethod}}</li>{{end}}
{{if .Order.Notes}}<li>Ghi chú: {{.Order.Notes}}</li>{{end}}
</ul>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Sản phẩm</th><th>Số lượng</th><th>Đơn giá</th><th>Thành tiền</th></tr>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{vnd .Price}}</td><td>{{vnd .LineTotal}}</td></tr>
{{end}}</table>
<p><strong>Tổng cộng: {{vnd .Order.Total}}</strong></p>
</body></html>`))

var customerTemplate = template.Must(template.New("customer_email").Funcs(emailFuncs).Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif">
<h2>{{.Shop}} cảm ơn bạn đã đặt hàng!</h2>
<p>Xin chào {{.Order.CustomerName}},</p>
<p>Đơn hàng <strong>#{{.Order.OrderID}}</strong> của bạn đã được tiếp nhận lúc {{when .Order.CreatedAt}}.</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Sản phẩm</th><th>Số lượng</th><th>Thành tiền</th></tr>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{vnd .LineTotal}}</td></tr>
{{end}}</table>
<p><strong>Tổng cộng: {{vnd .Order.Total}}</strong></p>
<p>Giao đến: {{.Order.ReceiverName}} - {{.Order.ReceiverPhone}}<br>{{.Order.ShippingAddress}}</p>
{{with .Order.DeliveryTime}}<p>Thời gian nhận hàng: {{when (deref .)}}</p>{{end}}
<p>Chúng tôi sẽ liên hệ với bạn để xác nhận đơn hàng trong thời gian sớm nhất.</p>
<p>{{.Shop}}</p>
</body></html>`))
