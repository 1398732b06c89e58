package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
)

// FormatPrice formats an amount in minor units
func FormatPrice(amount int64, currency string) string {
	symbol := currency + " "
	if currency == model.DefaultCurrency {
		symbol = "₹"
	}
	if amount%100 == 0 {
		return fmt.Sprintf("%s%d", symbol, amount/100)
	}
	return fmt.Sprintf("%s%d.%02d", symbol, amount/100, amount%100)
}

// FormatDateTime formats a timestamp for messages
func FormatDateTime(t time.Time) string {
	return t.Format("02 Jan 2006 15:04 MST")
}

// startsIn words the time left until an interview, rounded to the minute
func startsIn(d time.Duration) string {
	d = d.Round(time.Minute)
	switch {
	case d <= 0:
		return "starting now"
	case d == time.Minute:
		return "starts in 1 minute"
	case d == time.Hour:
		return "starts in 1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("starts in %d hours", int(d.Hours()))
	default:
		return fmt.Sprintf("starts in %d minutes", int(d.Minutes()))
	}
}

// Render builds the subject and body of e for one recipient
func Render(e Event, to Recipient) (string, string) {
	iv := e.Interview

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", to.Name)

	var subject string
	switch e.Type {
	case EventBookingConfirmed:
		subject = "Mock interview booked"
		b.WriteString("Your mock interview is booked.\n")
	case EventBookingCancelled:
		subject = "Mock interview cancelled"
		b.WriteString("The mock interview below was cancelled.\n")
		if e.Reason != "" {
			fmt.Fprintf(&b, "Reason: %s\n", e.Reason)
		}
	case EventPaymentSubmitted:
		subject = "Payment proof submitted"
		if to.Role == model.RoleCandidate {
			b.WriteString("We received your payment proof. It will be verified shortly.\n")
		} else {
			b.WriteString("A payment proof is waiting for verification.\n")
		}
	case EventPaymentVerified:
		if e.Payment != nil && e.Payment.Status == model.PaymentStatusRejected {
			subject = "Payment rejected"
			b.WriteString("The payment proof was rejected. Please submit it again.\n")
			if e.Payment.RejectionReason != nil {
				fmt.Fprintf(&b, "Reason: %s\n", *e.Payment.RejectionReason)
			}
		} else {
			subject = "Payment verified"
			b.WriteString("The payment was verified.\n")
		}
	case EventInterviewReminder:
		subject = "Mock interview starting soon"
		if iv != nil {
			subject = "Mock interview " + startsIn(iv.ScheduledAt.Sub(e.OccurredAt))
		}
		b.WriteString("Reminder: your mock interview starts soon.\n")
	default:
		subject = "Mock interview update"
	}

	if iv != nil {
		fmt.Fprintf(&b, "\nInterview #%d (%s)\n", iv.ID, iv.InterviewType)
		fmt.Fprintf(&b, "When: %s, %d min\n", FormatDateTime(iv.ScheduledAt), iv.DurationMinutes)
		if e.Candidate != nil {
			fmt.Fprintf(&b, "Candidate: %s\n", e.Candidate.Name)
		}
		if e.Interviewer != nil {
			fmt.Fprintf(&b, "Interviewer: %s\n", e.Interviewer.Name)
		}
		if iv.MeetingLink != "" && iv.Status != model.InterviewStatusCancelled {
			fmt.Fprintf(&b, "Meeting link: %s\n", iv.MeetingLink)
		}
	}

	if p := e.Payment; p != nil {
		fmt.Fprintf(&b, "\nPayment #%d: %s, status %s\n", p.ID, FormatPrice(p.Amount, p.Currency), p.Status)
		if p.TransactionRef != nil {
			fmt.Fprintf(&b, "UPI transaction ending in %s\n", *p.TransactionRef)
		}
	}

	return subject, b.String()
}
