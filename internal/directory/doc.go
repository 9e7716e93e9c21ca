// Package directory implements the thin client operations this service
// needs against the LDAP directory: credential binds, person and group
// lookups, idempotent group membership writes and person entry creation.
//
// The directory is the authoritative store for primary credentials and
// group membership; local persistence only mirrors it.
package directory
