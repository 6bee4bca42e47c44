// Package mail sends transactional email, through SendGrid in production and to the
// process log otherwise.
package mail

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const subjectPrefix = "[QuizOne] "

type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleSender prints messages to the log and keeps them for inspection.
type ConsoleSender struct {
	from   string
	silent bool

	mu   sync.Mutex
	sent []Message
}

func NewConsoleSender(from string) *ConsoleSender {
	return &ConsoleSender{from: from}
}

// NewSilentSender records messages without printing them.
func NewSilentSender() *ConsoleSender {
	return &ConsoleSender{silent: true}
}

func (s *ConsoleSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()

	if s.silent {
		return nil
	}
	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "From: %s\r\n", s.from)
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", subjectPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n\r\n", msg.To)
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.Text)
	log.Println(body.String())
	return nil
}

func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message{}, s.sent...)
}

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendgridSender struct {
	key  string
	from *sgmail.Email
}

func NewSendgridSender(apiKey, from string) *SendgridSender {
	return &SendgridSender{key: apiKey, from: sgmail.NewEmail("QuizOne", from)}
}

func (s *SendgridSender) Send(_ context.Context, msg Message) error {
	p := sgmail.NewPersonalization()
	p.Subject = subjectPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail("", msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return errors.Wrap(err, "sending email")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sending email - status: %d - body: %s", res.StatusCode, res.Body)
	}
	return nil
}
