package notification

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"vehiclerent/internal/domain"
)

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type confirmationData struct {
	CustomerName  string
	BookingCode   string
	Vehicle       string
	PlateNumber   string
	StartDate     string
	EndDate       string
	StartLocation string
	EndLocation   string
	TotalPrice    string
	Status        string
}

var confirmationText = texttemplate.Must(texttemplate.New("text").Parse(`Hello {{.CustomerName}},

Your booking {{.BookingCode}} has been received and is {{.Status}}.

Vehicle:  {{.Vehicle}} ({{.PlateNumber}})
Pick-up:  {{.StartDate}}, {{.StartLocation}}
Drop-off: {{.EndDate}}, {{.EndLocation}}
Total:    {{.TotalPrice}}

The owner will confirm the booking shortly.
`))

var confirmationHTML = htmltemplate.Must(htmltemplate.New("html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif;">
<p>Hello {{.CustomerName}},</p>
<p>Your booking <strong>{{.BookingCode}}</strong> has been received and is <strong>{{.Status}}</strong>.</p>
<table cellpadding="4">
<tr><td>Vehicle</td><td>{{.Vehicle}} ({{.PlateNumber}})</td></tr>
<tr><td>Pick-up</td><td>{{.StartDate}}, {{.StartLocation}}</td></tr>
<tr><td>Drop-off</td><td>{{.EndDate}}, {{.EndLocation}}</td></tr>
<tr><td>Total</td><td>{{.TotalPrice}}</td></tr>
</table>
<p>The owner will confirm the booking shortly.</p>
</body>
</html>
`))

// RenderBookingConfirmation builds the confirmation email for a booking whose
// Vehicle and Customer are populated.
func RenderBookingConfirmation(b *domain.Booking) (*Message, error) {
	if b == nil || b.Vehicle == nil || b.Customer == nil {
		return nil, fmt.Errorf("render confirmation: booking must carry vehicle and customer")
	}

	name := strings.TrimSpace(b.Customer.Name)
	if name == "" {
		name = b.Customer.Email
	}
	data := confirmationData{
		CustomerName:  name,
		BookingCode:   b.Ref(),
		Vehicle:       strings.TrimSpace(b.Vehicle.Make + " " + b.Vehicle.Model),
		PlateNumber:   b.Vehicle.PlateNumber,
		StartDate:     b.BookingStartDate.UTC().Format("2006-01-02"),
		EndDate:       b.BookingEndDate.UTC().Format("2006-01-02"),
		StartLocation: b.StartLocation,
		EndLocation:   b.EndLocation,
		TotalPrice:    fmt.Sprintf("%.2f", b.TotalPrice),
		Status:        b.BookingStatus.String(),
	}

	var text, html bytes.Buffer
	if err := confirmationText.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render confirmation text: %w", err)
	}
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render confirmation html: %w", err)
	}

	return &Message{
		To:      b.Customer.Email,
		Subject: "Booking " + data.BookingCode + " received",
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
