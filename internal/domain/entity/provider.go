// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"fmt"
	"strings"
)

// Provider identifies an OAuth identity provider supported for social login.
type Provider string

const (
	// ProviderKakao is Kakao social login (authorization-code flow).
	ProviderKakao Provider = "kakao"
	// ProviderGoogle is Google social login (authorization-code flow).
	ProviderGoogle Provider = "google"
	// ProviderApple is Apple social login (signed identity-token flow).
	ProviderApple Provider = "apple"
)

// ParseProvider maps a stored or wire provider string to a Provider.
// The zero value is returned with ok=false for anything unrecognized.
func ParseProvider(s string) (Provider, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ProviderKakao):
		return ProviderKakao, true
	case string(ProviderGoogle):
		return ProviderGoogle, true
	case string(ProviderApple):
		return ProviderApple, true
	default:
		return "", false
	}
}

// String returns the canonical lowercase provider name.
func (p Provider) String() string {
	return string(p)
}

// VirtualEmail derives the synthetic account-identity address for a provider
// user id. Providers may withhold or vary real addresses, so this derived
// value is what the member row is keyed on: {provider}_{oauthId}@virtual.com.
func (p Provider) VirtualEmail(oauthID string) string {
	return fmt.Sprintf("%s_%s@virtual.com", p, oauthID)
}
