package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ErrEmptyEmail is returned when an email has neither a text nor an HTML body
var ErrEmptyEmail = errors.New("email has no content")

// Email represents an email message fetched from a mailbox
type Email struct {
	EmailID    string    `bson:"emailId"`
	From       string    `bson:"from"`
	To         string    `bson:"to"`
	Subject    string    `bson:"subject"`
	Body       string    `bson:"body"`
	HTMLBody   string    `bson:"htmlBody"`
	ReceivedAt time.Time `bson:"receivedAt"`
	Labels     []string  `bson:"labels"`
}

// Content returns the text handed to the extraction agent. The plain-text
// body wins; an HTML-only email is converted to markdown.
func (e *Email) Content() (string, error) {
	if strings.TrimSpace(e.Body) != "" {
		return e.Body, nil
	}
	if strings.TrimSpace(e.HTMLBody) == "" {
		return "", ErrEmptyEmail
	}
	markdown, err := htmltomarkdown.ConvertString(e.HTMLBody)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML body: %w", err)
	}
	if strings.TrimSpace(markdown) == "" {
		return "", ErrEmptyEmail
	}
	return markdown, nil
}

// Input builds the agent input for this email
func (e *Email) Input() (EmailInput, error) {
	content, err := e.Content()
	if err != nil {
		return EmailInput{}, err
	}
	if e.Subject != "" {
		content = "Subject: " + e.Subject + "\n\n" + content
	}
	return EmailInput{EmailContent: content}, nil
}
