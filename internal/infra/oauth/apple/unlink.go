package apple

import (
	"context"

	"islandpost/internal/domain/entity"
	"islandpost/internal/domain/service"
)

// UnlinkStrategy is the Apple unlink no-op. Apple exposes no admin unlink
// API; users revoke access themselves from their Apple ID settings.
type UnlinkStrategy struct{}

// NewUnlinkStrategy creates the Apple unlink strategy.
func NewUnlinkStrategy() service.UnlinkStrategy {
	return &UnlinkStrategy{}
}

// Supports reports whether this strategy handles the given provider.
func (s *UnlinkStrategy) Supports(provider entity.Provider) bool {
	return provider == entity.ProviderApple
}

// Unlink is a documented no-op.
func (s *UnlinkStrategy) Unlink(_ context.Context, _ string) error {
	return nil
}
