// Package mail builds and dispatches outbound email.
package mail

import (
	"bytes"         // Template output
	"context"       // Request-scoped cancellation
	"html/template" // Escaped HTML bodies
	"net/url"       // Reset link query encoding
)

// Message is one outbound email
type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// Mailer delivers or enqueues a message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

var niceEmail = template.Must(template.New("email").Parse(`
<div className="email" style="padding: 20px; border: 1px solid black; font-family: sans-serif; font-size: 20px; line-height: 2;">
	<h2>Hello there,</h2>
	<p>{{.Intro}}</p>
	<p><a href="{{.Link}}">Click here to reset!</a></p>
	<br />
	<p>Storefront</p>
</div>
`))

// ResetMessage builds the password reset email carrying the raw token
func ResetMessage(frontendURL, from, to, rawToken string) (Message, error) {
	link := frontendURL + "/reset?resetToken=" + url.QueryEscape(rawToken)
	var buf bytes.Buffer
	err := niceEmail.Execute(&buf, struct {
		Intro string
		Link  string
	}{Intro: "Your Password Reset Token is Here!", Link: link})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		From:    from,
		Subject: "Storefront Password Reset Token",
		Text:    "Your password reset token is here! " + link,
		HTML:    buf.String(),
	}, nil
}
