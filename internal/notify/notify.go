package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/models"
)

func moneyString(d decimal.Decimal) string {
	return "€ " + d.StringFixed(2)
}

// Dispatcher sends the storefront's emails. Order notifications are best
// effort: failures are logged and never returned.
type Dispatcher struct {
	sender   Sender
	operator string
	logger   *zap.Logger
}

func NewDispatcher(sender Sender, operatorEmail string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, operator: operatorEmail, logger: logger}
}

type orderData struct {
	User  *models.User
	Order *models.OrderWithLines
}

func (d *Dispatcher) OrderConfirmation(ctx context.Context, user *models.User, order *models.OrderWithLines) {
	d.deliver(ctx, "order confirmation", order.OrderID, confirmationTmpl, orderData{User: user, Order: order}, Message{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("Order #%d confirmation", order.OrderID),
	})
}

func (d *Dispatcher) SaleAlert(ctx context.Context, user *models.User, order *models.OrderWithLines) {
	d.deliver(ctx, "sale alert", order.OrderID, saleAlertTmpl, orderData{User: user, Order: order}, Message{
		To:      []string{d.operator},
		ReplyTo: user.Email,
		Subject: fmt.Sprintf("New sale: order #%d (%s)", order.OrderID, moneyString(order.TotalPaid)),
	})
}

func (d *Dispatcher) Shipped(ctx context.Context, user *models.User, order *models.Order) {
	data := struct {
		User  *models.User
		Order *models.Order
	}{user, order}

	d.deliver(ctx, "shipment notification", order.OrderID, shippedTmpl, data, Message{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("Order #%d has shipped", order.OrderID),
	})
}

// Contact forwards a visitor's message to the operator. Unlike the order
// emails, the error is returned so the visitor can be told.
func (d *Dispatcher) Contact(ctx context.Context, name, email, subject, body string) error {
	var buf bytes.Buffer
	data := struct{ Name, Email, Subject, Body string }{name, email, subject, body}
	if err := contactTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render contact message: %w", err)
	}

	return d.sender.Send(ctx, Message{
		To:      []string{d.operator},
		ReplyTo: email,
		Subject: "Contact form: " + strings.TrimSpace(subject),
		Body:    buf.String(),
	})
}

func (d *Dispatcher) deliver(ctx context.Context, kind string, orderID int, tmpl *template.Template, data any, msg Message) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		d.logger.Error("failed to render email", zap.String("kind", kind), zap.Int("order_id", orderID), zap.Error(err))
		return
	}
	msg.Body = buf.String()

	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("failed to send email",
			zap.String("kind", kind),
			zap.Int("order_id", orderID),
			zap.Strings("to", msg.To),
			zap.Error(err),
		)
		return
	}

	d.logger.Info("email sent", zap.String("kind", kind), zap.Int("order_id", orderID))
}
