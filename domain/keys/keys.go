package keys

import "strings"

const (
	// PfxPayToken is used for prefixing pay token cache keys
	PfxPayToken = "paytoken"
	// PfxRoyalty is used for prefixing royalty cache keys
	PfxRoyalty = "royalty"
	// PfxAuthNonce is used for prefixing sign-in nonce cache keys
	PfxAuthNonce = "authNonce"
	// PfxAssetContract is used for prefixing asset contract cache keys
	PfxAssetContract = "assetContract"
	// PfxHealthCheck is used for prefixing health check probe keys
	PfxHealthCheck = "healthCheck"
)

// GetPrefix returns the leading component of a redis key, used as a metric tag
func GetPrefix(key string) string {
	if idx := strings.Index(key, ":"); idx > 0 {
		return key[:idx]
	}
	return key
}

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}
