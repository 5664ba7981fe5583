package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/domain/repository"
	"flight-extractor/pkg/logger"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GmailService reads messages from the authorized Gmail mailbox
type GmailService struct {
	gmailService *gmail.Service
	logger       logger.Logger
}

// NewGmailService creates a new Gmail service. A nil tokenSource leaves
// authentication to opts.
func NewGmailService(ctx context.Context, tokenSource oauth2.TokenSource, logger logger.Logger, opts ...option.ClientOption) (repository.EmailRepository, error) {
	if tokenSource != nil {
		opts = append([]option.ClientOption{option.WithTokenSource(tokenSource)}, opts...)
	}
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &GmailService{
		gmailService: service,
		logger:       logger,
	}, nil
}

// FindByEmailID fetches a full message by Gmail message ID
func (s *GmailService) FindByEmailID(ctx context.Context, emailID string) (*entity.Email, error) {
	msg, err := s.gmailService.Users.Messages.Get("me", emailID).Format("full").Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message %s: %w", emailID, err)
	}

	email, err := convertToEmail(msg)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Fetched email from Gmail",
		"emailID", email.EmailID,
		"subject", email.Subject,
		"receivedAt", email.ReceivedAt.Format("2006-01-02 15:04:05 UTC"))
	return email, nil
}

// convertToEmail converts a Gmail message to our domain entity
func convertToEmail(msg *gmail.Message) (*entity.Email, error) {
	if msg.Payload == nil {
		return nil, fmt.Errorf("message %s has no payload", msg.Id)
	}

	email := &entity.Email{
		EmailID:    msg.Id,
		Labels:     msg.LabelIds,
		ReceivedAt: time.UnixMilli(msg.InternalDate).UTC(),
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			email.From = header.Value
		case "To":
			email.To = header.Value
		case "Subject":
			email.Subject = header.Value
		}
	}

	if err := collectBodies(msg.Payload, email); err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", msg.Id, err)
	}
	return email, nil
}

// collectBodies walks nested multipart parts and keeps the first text and
// HTML bodies. Attachments are skipped.
func collectBodies(part *gmail.MessagePart, email *entity.Email) error {
	if part.Filename == "" && part.Body != nil && part.Body.Data != "" {
		data, err := decodeBody(part.Body.Data)
		if err != nil {
			return err
		}
		switch {
		case strings.HasPrefix(part.MimeType, "text/html"):
			if email.HTMLBody == "" {
				email.HTMLBody = data
			}
		case strings.HasPrefix(part.MimeType, "text/plain"), part.MimeType == "":
			if email.Body == "" {
				email.Body = data
			}
		}
	}

	for _, child := range part.Parts {
		if err := collectBodies(child, email); err != nil {
			return err
		}
	}
	return nil
}

// decodeBody decodes Gmail's base64url body data, padded or not
func decodeBody(data string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return "", err
		}
	}
	return string(decoded), nil
}
