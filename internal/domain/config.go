package domain

// KeyPrefix namespaces every key written to the key-value store.
const KeyPrefix = "stylegenie:"

// Service names reported by health endpoints and gateway errors.
const (
	ServiceMatcher   = "matcher"
	ServiceGateway   = "api-gateway"
	ServiceGenerator = "image-generation"
)
