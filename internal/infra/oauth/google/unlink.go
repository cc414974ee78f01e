package google

import (
	"context"

	"islandpost/internal/domain/entity"
	"islandpost/internal/domain/service"
)

// UnlinkStrategy is the Google unlink no-op. Google has no server-to-server
// account disconnect equivalent to Kakao's admin unlink; the grant simply
// lapses once the member row is deactivated and tokens stop being issued.
type UnlinkStrategy struct{}

// NewUnlinkStrategy creates the Google unlink strategy.
func NewUnlinkStrategy() service.UnlinkStrategy {
	return &UnlinkStrategy{}
}

// Supports reports whether this strategy handles the given provider.
func (s *UnlinkStrategy) Supports(provider entity.Provider) bool {
	return provider == entity.ProviderGoogle
}

// Unlink is a documented no-op.
func (s *UnlinkStrategy) Unlink(_ context.Context, _ string) error {
	return nil
}
