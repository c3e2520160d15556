// Package util provides shared string helpers used across apisim packages.
//
//   - Slugify / SanitizeCollectionSlug: derive URL-safe tokens for mock URLs
//   - NormalizeEndpoint: canonical leading-slash form for endpoint patterns
//   - TruncateBody: cap request/response bodies for safe logging
package util
