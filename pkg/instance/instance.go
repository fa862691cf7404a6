package instance

import "github.com/angelmondragon/storefront-gateway/pkg/env"

// GetID returns an identifier for the running gateway instance.
func GetID() string {
	return env.First("local", "DYNO", "HOSTNAME", "INSTANCE_ID")
}
