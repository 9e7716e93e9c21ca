// Package uniuri generates random strings good for use in URIs to identify
// unique objects. It is used for the SSO state parameter and for opaque
// refresh token values.
//
// It uses crypto/rand and avoids modulo bias by rejecting random bytes
// outside the usable range.
package uniuri
