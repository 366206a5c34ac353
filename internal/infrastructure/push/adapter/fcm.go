package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"go-courier/internal/infrastructure/push/port"
)

// sendTimeout bounds every provider call; an unbounded external call is never
// acceptable on the delivery path.
const sendTimeout = 10 * time.Second

// FCMProvider satisfies port.Provider using Firebase Cloud Messaging.
type FCMProvider struct {
	client *messaging.Client
}

// NewFCMProviderFromEnv builds the provider from the FCM_CREDENTIALS_FILE
// service-account path.
func NewFCMProviderFromEnv(ctx context.Context) (*FCMProvider, error) {
	credFile := os.Getenv("FCM_CREDENTIALS_FILE")
	if credFile == "" {
		return nil, errors.New("fcm: FCM_CREDENTIALS_FILE environment variable is not set")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credFile))
	if err != nil {
		return nil, fmt.Errorf("fcm: init app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("fcm: init messaging client: %w", err)
	}
	return &FCMProvider{client: client}, nil
}

var _ port.Provider = (*FCMProvider)(nil)

func (f *FCMProvider) Send(ctx context.Context, token string, p port.Payload) error {
	if token == "" {
		return errors.New("fcm: empty device token")
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := f.client.Send(ctx, &messaging.Message{
		Token:        token,
		Notification: &messaging.Notification{Title: p.Title, Body: p.Body},
		Data:         p.Data,
	})
	if err != nil {
		return fmt.Errorf("fcm: send: %w", err)
	}
	return nil
}

func (f *FCMProvider) SendMulti(ctx context.Context, tokens []string, p port.Payload) ([]port.Result, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: &messaging.Notification{Title: p.Title, Body: p.Body},
		Data:         p.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("fcm: multicast: %w", err)
	}

	results := make([]port.Result, len(tokens))
	for i, r := range resp.Responses {
		results[i] = port.Result{Token: tokens[i], Err: r.Error}
	}
	return results, nil
}
