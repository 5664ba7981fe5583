package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"flight-extractor/internal/domain/entity"
	"flight-extractor/internal/infrastructure/config"
	"flight-extractor/internal/infrastructure/oauth"
	"flight-extractor/internal/infrastructure/persistence"
	"flight-extractor/internal/interface/gmail"
	"flight-extractor/internal/interface/repository"
	"flight-extractor/pkg/logger"
)

// loadEmail resolves the email to extract from the command flags. At most
// one source may be set; none means the demo email.
func loadEmail(ctx context.Context, cfg *config.Config, log logger.Logger, stdin io.Reader) (*entity.Email, error) {
	set := 0
	for _, v := range []string{filePath, gmailID, mongoID} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("use only one of --file, --gmail-id and --mongo-id")
	}

	switch {
	case filePath == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return &entity.Email{Body: string(data)}, nil

	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read email file: %w", err)
		}
		return &entity.Email{Body: string(data)}, nil

	case gmailID != "":
		if !cfg.GmailConfigured() {
			return nil, errors.New("GMAIL_CLIENT_ID, GMAIL_CLIENT_SECRET and GMAIL_REFRESH_TOKEN must be set")
		}
		gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, log)
		svc, err := gmail.NewGmailService(ctx, gmailOAuth.GetTokenSource(ctx), log)
		if err != nil {
			return nil, err
		}
		return svc.FindByEmailID(ctx, gmailID)

	case mongoID != "":
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGODB_DSN must be set")
		}
		client, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			return nil, err
		}
		defer client.Disconnect(context.Background())

		repo := repository.NewMongoEmailRepository(persistence.GetDatabase(client, cfg.MongoDB), cfg.MongoEmailCollection)
		return repo.FindByEmailID(ctx, mongoID)
	}

	return &entity.Email{Body: demoEmail}, nil
}
