package notify

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/etnz/checkbook"
	"github.com/rs/zerolog"
)

// Sender sends a push message. *messaging.Client is a Sender.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Push is a checkbook.Notifier sending alerts to a device through Firebase
// Cloud Messaging. Sending is fire-and-forget: failures are logged only.
type Push struct {
	sender  Sender
	token   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewPush returns a Push sending to the device token through sender.
func NewPush(sender Sender, token string, log zerolog.Logger) *Push {
	return &Push{sender: sender, token: token, timeout: 10 * time.Second, log: log}
}

// NewFirebasePush creates a Firebase app from the default credentials and
// returns a Push sending to the device token.
func NewFirebasePush(ctx context.Context, token string, log zerolog.Logger) (*Push, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("create messaging client: %w", err)
	}
	return NewPush(client, token, log), nil
}

func (p *Push) NotifyDeposit(amount checkbook.Money, payee string, balance checkbook.Money) {
	p.send("deposit", "Deposit received", fmt.Sprintf("%s from %s. Balance %s.", amount, payee, balance))
}

func (p *Push) NotifyDebit(amount checkbook.Money, payee string, balance checkbook.Money) {
	p.send("debit", "Debit posted", fmt.Sprintf("%s to %s. Balance %s.", amount.Abs(), payee, balance))
}

func (p *Push) NotifyLowBalance(balance, threshold checkbook.Money) {
	p.send("low_balance", "Low balance", fmt.Sprintf("Balance %s is below %s.", balance, threshold))
}

func (p *Push) NotifyOverdraft(balance checkbook.Money) {
	p.send("overdraft", "Account overdrawn", fmt.Sprintf("Balance %s.", balance))
}

func (p *Push) send(kind, title, body string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	message := &messaging.Message{
		Token: p.token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{"alert": kind},
	}
	if _, err := p.sender.Send(ctx, message); err != nil {
		p.log.Error().Err(err).Str("alert", kind).Msg("push not sent")
	}
}
