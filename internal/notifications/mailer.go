package notifications

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/sahasrara-wellness/booking-api/internal/config"
	domain "github.com/sahasrara-wellness/booking-api/internal/domain/booking"
	"github.com/sahasrara-wellness/booking-api/internal/models"
)

// Mailer sends guest-facing booking emails. Delivery is best effort: errors
// are logged and swallowed so a broken SMTP relay never blocks a payment
// confirmation.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:    cfg.MailFrom,
		baseURL: cfg.PublicBaseURL,
	}
}

func (m *Mailer) BookingConfirmed(b *models.Booking) {
	if b.Guest.Email == "" {
		return
	}

	start, err := domain.ParseClock(b.StartTime)
	if err != nil {
		return
	}

	link := fmt.Sprintf("%s/bookings/%d?token=%s", m.baseURL, b.ID, b.AccessToken)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", b.Guest.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Booking confirmed: %s on %s", b.Service.Name, b.BookingDate.Format("2 Jan 2006")))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Hi %s,\n\nYour booking is confirmed.\n\n"+
			"Service: %s\nBranch: %s\nDate: %s\nTime: %s\nTherapist: %s\n\n"+
			"View your booking: %s\n",
		b.Guest.Name,
		b.Service.Name,
		b.Branch.Name,
		b.BookingDate.Format("Monday, 2 Jan 2006"),
		start.Display(),
		b.Worker.Name,
		link,
	))

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.Error().Err(err).Uint("booking_id", b.ID).Msg("failed to send confirmation email")
	}
}
