package notify

import (
	"fmt"

	"github.com/gregdel/pushover"
	"github.com/sirupsen/logrus"

	"github.com/railbook/railbook/internal/api/rail"
)

const (
	PriorityNormal = 0
	PriorityHigh   = 1
)

type Notifier struct {
	app       *pushover.Pushover
	recipient *pushover.Recipient
	logger    *logrus.Logger
}

func NewNotifier(token, userKey string, logger *logrus.Logger) *Notifier {
	return &Notifier{
		app:       pushover.New(token),
		recipient: pushover.NewRecipient(userKey),
		logger:    logger,
	}
}

func (n *Notifier) Send(title, message string) error {
	return n.SendWithPriority(title, message, PriorityNormal)
}

func (n *Notifier) SendWithPriority(title, message string, priority int) error {
	msg := pushover.NewMessageWithTitle(message, title)
	msg.Priority = priority

	resp, err := n.app.SendMessage(msg, n.recipient)
	if err != nil {
		return fmt.Errorf("sending pushover notification: %w", err)
	}

	n.logger.WithFields(logrus.Fields{
		"title":      title,
		"status":     resp.Status,
		"request_id": resp.ID,
	}).Debug("notification sent")

	return nil
}

func (n *Notifier) SendBookingConfirmed(b *rail.Booking) error {
	title := "Booking Confirmed"
	body := fmt.Sprintf("PNR %s: %s (#%s) %s to %s on %s.\nClass %s, %d passengers, ₹%d",
		b.PNR, b.TrainName, b.TrainNumber, b.Source, b.Destination, b.TravelDate,
		b.Class, len(b.Passengers), b.TotalFare)
	return n.Send(title, body)
}

func (n *Notifier) SendBookingCancelled(pnr string) error {
	title := "Booking Cancelled"
	body := fmt.Sprintf("Booking %s has been cancelled.", pnr)
	return n.Send(title, body)
}

func (n *Notifier) SendStatusChange(pnr, oldStatus, newStatus string) error {
	title := "Booking Status Update"
	body := fmt.Sprintf("Booking %s changed from %s to %s.", pnr, oldStatus, newStatus)
	return n.SendWithPriority(title, body, PriorityHigh)
}
