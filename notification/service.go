// Package notification issues the platform notification mutations. The
// server restricts these to organization administrators.
package notification

import (
	"context"
	"fmt"

	"github.com/labelforge/labelforge-go/graphql"
)

type Service struct {
	exec graphql.Executor
}

func NewService(exec graphql.Executor) *Service {
	return &Service{exec: exec}
}

func (s *Service) Create(ctx context.Context, message, status, url, userID string) (string, error) {
	vars := map[string]interface{}{
		"data": map[string]interface{}{
			"message": message,
			"status":  status,
			"url":     url,
			"userID":  userID,
		},
	}

	var payload struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := s.exec.Execute(ctx, graphql.CreateNotification, vars, &payload); err != nil {
		return "", fmt.Errorf("create notification: %w", err)
	}
	return payload.Data.ID, nil
}

func (s *Service) Update(ctx context.Context, notificationID string, hasBeenSeen bool, status, url string) error {
	vars := map[string]interface{}{
		"notificationID": notificationID,
		"hasBeenSeen":    hasBeenSeen,
		"status":         status,
		"url":            url,
	}
	if err := s.exec.Execute(ctx, graphql.UpdatePropertiesInNotification, vars, nil); err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return nil
}
