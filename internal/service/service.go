package service

import (
	"context"
	"errors"
	"log/slog"

	"eshop-api/internal/apperror"
	"eshop-api/internal/events"
	"eshop-api/internal/logger"
	"eshop-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func parseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperror.Validation("Invalid " + what + " id")
	}
	return id, nil
}

// storeErr translates a repository failure. notFound may be empty when a
// missing document cannot happen.
func storeErr(err error, notFound, failed string) error {
	if notFound != "" && errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	return apperror.Internal(failed, err)
}

func publish(ctx context.Context, p events.Publisher, eventType string, id primitive.ObjectID) {
	if err := p.Publish(ctx, events.New(eventType, id.Hex())); err != nil {
		logger.Warn(ctx, "Event publish failed",
			slog.String("event.type", eventType),
			slog.String("error", err.Error()),
		)
	}
}
