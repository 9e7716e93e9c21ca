// Package auth implements authentication and token lifecycle for the
// membership API.
//
// Primary credentials live in the LDAP directory; a successful bind
// materializes (or refreshes) the local user, mirrors the directory's
// group memberships into local persistence and makes sure the member is
// present in the canonical directory group. Access is granted through
// short-lived signed JWTs; sessions are extended through a single stored
// refresh token per user that is rotated on every login and refresh. The
// issued token itself is stored as the refresh token value, so the client
// holds exactly one token.
//
// The EVE Online SSO flow links game characters to a local user: the
// service builds the authorize URL with a single-use state value, exchanges
// the returned code for tokens, verifies the character identity and upserts
// the character row.
//
// Components receive their collaborators explicitly:
//
//	dir := directory.NewClient(&dirCfg)
//	issuer := auth.NewTokenIssuer(cfg.Auth.JWT)
//	service := auth.NewService(db, dir, issuer)
//	token, err := service.Login(username, password)
package auth
