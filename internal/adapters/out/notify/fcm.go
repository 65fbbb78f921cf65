package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const channelPush = "fcm"

// PushClient is the part of *messaging.Client the gateway uses.
type PushClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NewFCMClient builds a messaging client from a service account file.
func NewFCMClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	if credentialsFile == "" {
		return nil, errors.New("firebase credentials file is required")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return client, nil
}

// UserTopic is the FCM topic a user's devices subscribe to.
func UserTopic(userID kernel.UUID) string {
	return "user-" + userID.String()
}

// FCMGateway pushes messages to the user's topic.
type FCMGateway struct {
	client PushClient
	logger *slog.Logger
}

func NewFCMGateway(client PushClient, logger *slog.Logger) *FCMGateway {
	return &FCMGateway{
		client: client,
		logger: logger.With("component", "fcm_gateway"),
	}
}

func (g *FCMGateway) Send(ctx context.Context, userID kernel.UUID, msg ports.Message) error {
	message := &messaging.Message{
		Topic: UserTopic(userID),
		Data:  msg.Data,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	messageID, err := g.client.Send(ctx, message)
	if err != nil {
		return NewDeliveryError(channelPush, userID, err)
	}

	g.logger.DebugContext(ctx, "push sent", "user_id", userID.String(), "message_id", messageID)
	return nil
}
