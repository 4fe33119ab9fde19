package myvault

// CurrentCredentials is the uid under which the active payment-provider
// credentials are stored.
const CurrentCredentials = "current"

type Credentials struct {
	ProviderName string
	APIKey       string
}
