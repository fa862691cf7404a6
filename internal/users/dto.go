package users

import (
	"time"

	"github.com/angelmondragon/storefront-gateway/pkg/backend"
	"github.com/angelmondragon/storefront-gateway/pkg/enums"
)

// ProfileDTO is the current user as the profile pages show it.
type ProfileDTO struct {
	ID            string                 `json:"id"`
	Email         string                 `json:"email"`
	FullName      string                 `json:"full_name"`
	Roles         []enums.Role           `json:"roles"`
	IsSeller      bool                   `json:"is_seller"`
	BuyerProfile  *backend.BuyerProfile  `json:"buyer_profile,omitempty"`
	SellerProfile *backend.SellerProfile `json:"seller_profile,omitempty"`
}

// LoginResult carries the gateway session token handed to the browser.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      ProfileDTO `json:"user"`
}

// ProfileUpdate is the backend confirmation plus the re-read profile.
type ProfileUpdate struct {
	Message string      `json:"message"`
	Profile *ProfileDTO `json:"profile,omitempty"`
}

func newProfileDTO(p backend.UserProfile) ProfileDTO {
	roles := p.ParsedRoles()
	if roles == nil {
		roles = []enums.Role{}
	}
	return ProfileDTO{
		ID:            p.ID,
		Email:         p.Email,
		FullName:      p.FullName,
		Roles:         roles,
		IsSeller:      enums.HasRole(roles, enums.RoleSeller),
		BuyerProfile:  p.BuyerProfile,
		SellerProfile: p.SellerProfile,
	}
}
