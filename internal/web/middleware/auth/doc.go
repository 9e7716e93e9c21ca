// Package auth provides the bearer token middleware guarding the
// authenticated part of the API surface.
package auth
