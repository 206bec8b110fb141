package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/terraincognita07/crewdesk/internal/models"
)

const notSpecified = "Not specified"

// Message is one outbound e-mail. LeadID travels with it so event-based
// senders can key on the lead.
type Message struct {
	LeadID  string `json:"lead_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type leadView struct {
	ProjectName string
	Phase       string
	SqFootage   string
	StartDate   string
	Email       string
	Name        string
	Phone       string
	Message     string
}

var leadTemplate = template.Must(template.New("lead").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f5; padding: 24px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden;">
    <div style="background-color: #ea580c; color: #ffffff; padding: 24px;">
      <h1 style="margin: 0; font-size: 22px;">New Lead Received</h1>
      <p style="margin: 8px 0 0 0;">{{.ProjectName}}</p>
    </div>
    <div style="padding: 24px;">
      <h2 style="font-size: 14px; text-transform: uppercase; color: #71717a;">Contact</h2>
      <p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
      {{if .Name}}<p><strong>Name:</strong> {{.Name}}</p>{{end}}
      {{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
      <h2 style="font-size: 14px; text-transform: uppercase; color: #71717a;">Project</h2>
      <table style="width: 100%; border-collapse: collapse;">
        <tr><td style="padding: 4px 0; color: #71717a;">Phase</td><td>{{.Phase}}</td></tr>
        <tr><td style="padding: 4px 0; color: #71717a;">Square footage</td><td>{{.SqFootage}}</td></tr>
        <tr><td style="padding: 4px 0; color: #71717a;">Estimated start</td><td>{{.StartDate}}</td></tr>
      </table>
      {{if .Message}}<h2 style="font-size: 14px; text-transform: uppercase; color: #71717a;">Message</h2>
      <p style="white-space: pre-wrap;">{{.Message}}</p>{{end}}
    </div>
  </div>
</body>
</html>
`))

var numberPrinter = message.NewPrinter(language.English)

// LeadMessage renders the admin notification for a stored lead. Replies go
// to the lead's contact address.
func LeadMessage(lead models.Lead, from string, to string) (Message, error) {
	view := leadView{
		ProjectName: lead.ProjectName,
		Phase:       notSpecified,
		SqFootage:   notSpecified,
		StartDate:   FormatStartDate(lead.EstimatedStartDate),
		Email:       lead.GCEmail,
		Name:        lead.GCName,
		Phone:       lead.GCPhone,
		Message:     strings.TrimSpace(lead.Message),
	}
	if lead.Phase != "" {
		view.Phase = lead.Phase.Label()
	}
	if lead.SqFootage != nil {
		view.SqFootage = numberPrinter.Sprintf("%d sq ft", *lead.SqFootage)
	}

	var body bytes.Buffer
	if err := leadTemplate.Execute(&body, view); err != nil {
		return Message{}, fmt.Errorf("render lead e-mail: %w", err)
	}

	return Message{
		LeadID:  lead.ID,
		From:    from,
		To:      to,
		ReplyTo: lead.GCEmail,
		Subject: "New Lead: " + lead.ProjectName,
		HTML:    body.String(),
	}, nil
}

func FormatStartDate(raw string) string {
	if raw == "" {
		return notSpecified
	}
	parsed, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return notSpecified
	}
	return parsed.Format("Monday, January 2, 2006")
}
