// Package auth provides API key credentials for the pkgindex registry.
//
// # Overview
//
// Every gated endpoint accepts an optional opaque token via the api_key query
// parameter. This package defines the credential record, its store, and token
// generation for the administrative creation path.
//
// # Credential Model
//
// APIKey: opaque token, owning user, active flag, and the internal tier flag
// that unlocks elevated endpoints.
//
//	key := &auth.APIKey{
//		AccessToken: token,
//		UserID:      user.ID,
//		Active:      true,
//		Internal:    false,
//	}
//
// # Token Generation
//
//	generator := auth.NewTokenGenerator()
//	token, err := generator.GenerateToken()
//	// Format: pkgindex_[base64url(32 random bytes)]
//
// # Resolution
//
// KeyStore.FindActiveByToken filters inactive keys at the query; a revoked
// token resolves to ErrKeyNotFound, never to its key. Resolution happens at
// most once per request: the gate caches the result in the request context
// (see pkg/middleware and pkg/contextkeys).
//
// # Related Packages
//
//   - pkg/middleware: request gate consuming these credentials
//   - pkg/metering: per-key usage counting
package auth
