package http

import (
	"fmt"
	"html/template"
	"strings"
)

var bookingConfirmationTemplate = template.Must(template.New("booking-confirmation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #1a1a2e;">Booking Confirmed!</h2>
	<p>Hi {{.Name}},</p>
	<p>Your tickets for <strong>{{.MovieTitle}}</strong> are confirmed.</p>
	<table style="width: 100%; border-collapse: collapse;">
		<tr><td style="padding: 6px 0; color: #666;">Theatre</td><td>{{.TheatreName}}</td></tr>
		<tr><td style="padding: 6px 0; color: #666;">Show</td><td>{{.ShowDate}}</td></tr>
		<tr><td style="padding: 6px 0; color: #666;">Seats</td><td>{{.Seats}}</td></tr>
		<tr><td style="padding: 6px 0; color: #666;">Amount paid</td><td>&#8377;{{.Amount}}</td></tr>
		<tr><td style="padding: 6px 0; color: #666;">Booking ID</td><td>{{.BookingID}}</td></tr>
	</table>
	<p style="color: #666; font-size: 13px;">Show this email at the theatre entrance.</p>
</div>`))

var supportAckTemplate = template.Must(template.New("support-ack").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #1a1a2e;">We received your request</h2>
	<p>Hi {{.Name}},</p>
	<p>Your support request <strong>{{.TicketID}}</strong>{{if .Subject}} about &ldquo;{{.Subject}}&rdquo;{{end}} has been received. Our team will get back to you within 24 hours.</p>
	{{if .AdminResponse}}<div style="background: #f5f5f5; padding: 12px; border-radius: 4px;">
		<p style="margin: 0;">{{.AdminResponse}}</p>
	</div>{{end}}
</div>`))

type bookingConfirmationData struct {
	Name        string
	MovieTitle  string
	TheatreName string
	ShowDate    string
	Seats       string
	Amount      string
	BookingID   string
}

type supportAckData struct {
	Name          string
	TicketID      string
	Subject       string
	AdminResponse string
}

func renderBookingConfirmation(d bookingConfirmationData) (string, error) {
	var sb strings.Builder
	if err := bookingConfirmationTemplate.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("rendering booking confirmation: %w", err)
	}

	return sb.String(), nil
}

func renderSupportAck(d supportAckData) (string, error) {
	var sb strings.Builder
	if err := supportAckTemplate.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("rendering support acknowledgement: %w", err)
	}

	return sb.String(), nil
}
