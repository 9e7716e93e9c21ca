package directory

import (
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
)

// Config holds directory connection and schema settings.
type Config struct {
	// Host is the directory server hostname or IP address.
	Host string
	// Port is the directory server port (typically 389 for LDAP, 636 for LDAPS).
	Port int
	// UseSSL enables LDAPS (LDAP over SSL/TLS) on port 636.
	UseSSL bool
	// UseTLS enables StartTLS to upgrade a plain connection to TLS.
	UseTLS bool
	// SkipVerify skips TLS certificate verification (insecure, for testing only).
	SkipVerify bool
	// BindDN is the distinguished name to bind with for searches and writes.
	BindDN string
	// BindPassword is the password for the bind DN.
	BindPassword string
	// PeopleBranch is the branch holding person entries.
	PeopleBranch string
	// GroupBranch is the branch holding group entries.
	GroupBranch string
	// MemberGroup is the canonical group every member is added to.
	MemberGroup string
	// UserRDNAttr is the RDN attribute of person entries (e.g. "uniqueIdentifier").
	UserRDNAttr string
	// UsernameAttr is the attribute containing the username (e.g. "uid").
	UsernameAttr string
	// EmailAttr is the attribute containing the email address (e.g. "mail").
	EmailAttr string
	// GroupNameAttr is the attribute containing the group name (e.g. "cn").
	GroupNameAttr string
	// MemberAttr is the multi-valued group membership attribute (e.g. "uniqueMember").
	MemberAttr string
	// Timeout is the connection timeout in seconds.
	Timeout int
}

// UserEntry is the subset of a directory person entry the service consumes.
type UserEntry struct {
	DN       string
	Username string
	Email    string
	Groups   []string
}

// Client performs directory operations over go-ldap connections.
// A fresh connection is dialed per operation and closed when done.
type Client struct {
	config *Config
}

// NewClient creates a directory client and applies schema defaults.
func NewClient(config *Config) *Client {
	if config.UserRDNAttr == "" {
		config.UserRDNAttr = "uniqueIdentifier"
	}

	if config.UsernameAttr == "" {
		config.UsernameAttr = "uid"
	}

	if config.EmailAttr == "" {
		config.EmailAttr = "mail"
	}

	if config.GroupNameAttr == "" {
		config.GroupNameAttr = "cn"
	}

	if config.MemberAttr == "" {
		config.MemberAttr = "uniqueMember"
	}

	if config.MemberGroup == "" {
		config.MemberGroup = "harat-users"
	}

	if config.Timeout == 0 {
		config.Timeout = 2
	}

	return &Client{config: config}
}

// CanonicalDN builds the canonical person DN for a username, as used both
// for credential binds and for group membership values.
func (c *Client) CanonicalDN(username string) string {
	return fmt.Sprintf("%s=%s,%s", c.config.UserRDNAttr, ldap.EscapeDN(username), c.config.PeopleBranch)
}

// connect establishes a connection to the directory server.
func (c *Client) connect() (*ldap.Conn, error) {
	hostPort := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))

	var ldapURL string
	if c.config.UseSSL {
		ldapURL = "ldaps://" + hostPort
	} else {
		ldapURL = "ldap://" + hostPort
	}

	var tlsConfig *tls.Config
	if c.config.UseSSL || c.config.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: c.config.SkipVerify, //nolint:gosec // skipping verifying tls is ok
			ServerName:         c.config.Host,
		}
	}

	conn, err := ldap.DialURL(ldapURL, ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to directory server: %w", err)
	}

	if !c.config.UseSSL && c.config.UseTLS {
		if errStartTLS := conn.StartTLS(tlsConfig); errStartTLS != nil {
			closeConn(conn)

			return nil, fmt.Errorf("failed to start TLS: %w", errStartTLS)
		}
	}

	if c.config.Timeout > 0 {
		conn.SetTimeout(time.Duration(c.config.Timeout) * time.Second)
	}

	return conn, nil
}

func closeConn(conn *ldap.Conn) {
	if err := conn.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close directory connection")
	}
}

// bindService binds with the configured service account, if one is set.
func (c *Client) bindService(conn *ldap.Conn) error {
	if c.config.BindDN == "" {
		return nil
	}

	if err := conn.Bind(c.config.BindDN, c.config.BindPassword); err != nil {
		return fmt.Errorf("failed to bind with service account: %w", err)
	}

	return nil
}

// Authenticate binds as the user's canonical DN with the supplied password
// and, on success, returns the person entry with its group names.
func (c *Client) Authenticate(username, password string) (*UserEntry, error) {
	conn, err := c.connect()
	if err != nil {
		return nil, err
	}

	defer closeConn(conn)

	userDN := c.CanonicalDN(username)

	if errBind := conn.Bind(userDN, password); errBind != nil {
		return nil, fmt.Errorf("authentication failed: %w", errBind)
	}

	// Searches run with the service account, not the member's own bind.
	if errRebind := c.bindService(conn); errRebind != nil {
		return nil, errRebind
	}

	entry, errSearch := c.searchUserEntry(conn, username)
	if errSearch != nil {
		return nil, errSearch
	}

	groups, errGroups := c.searchUserGroups(conn, userDN)
	if errGroups != nil {
		return nil, fmt.Errorf("failed to get user groups: %w", errGroups)
	}

	return &UserEntry{
		DN:       entry.DN,
		Username: entry.GetAttributeValue(c.config.UsernameAttr),
		Email:    entry.GetAttributeValue(c.config.EmailAttr),
		Groups:   groups,
	}, nil
}

// searchUserEntry searches the people branch for the given username and
// returns a single entry.
func (c *Client) searchUserEntry(conn *ldap.Conn, username string) (*ldap.Entry, error) {
	filter := fmt.Sprintf("(%s=%s)", c.config.UsernameAttr, ldap.EscapeFilter(username))
	searchRequest := ldap.NewSearchRequest(
		c.config.PeopleBranch,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, // Size limit
		c.config.Timeout,
		false,
		filter,
		[]string{c.config.UsernameAttr, c.config.EmailAttr, "dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for user: %w", err)
	}

	switch len(searchResult.Entries) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return searchResult.Entries[0], nil
	default:
		return nil, ErrAmbiguousResult
	}
}

// searchUserGroups returns the names of all groups carrying the member DN.
func (c *Client) searchUserGroups(conn *ldap.Conn, memberDN string) ([]string, error) {
	if c.config.GroupBranch == "" {
		return nil, nil
	}

	filter := fmt.Sprintf(
		"(&(objectClass=groupOfUniqueNames)(%s=%s))",
		c.config.MemberAttr,
		ldap.EscapeFilter(memberDN),
	)

	searchRequest := ldap.NewSearchRequest(
		c.config.GroupBranch,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		c.config.Timeout,
		false,
		filter,
		[]string{c.config.GroupNameAttr, "dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for groups: %w", err)
	}

	groups := make([]string, 0, len(searchResult.Entries))
	for _, entry := range searchResult.Entries {
		if name := entry.GetAttributeValue(c.config.GroupNameAttr); name != "" {
			groups = append(groups, name)
		}
	}

	return groups, nil
}

// searchGroupEntry searches the group branch for the named group and returns
// a single entry including its membership attribute.
func (c *Client) searchGroupEntry(conn *ldap.Conn, group string) (*ldap.Entry, error) {
	filter := fmt.Sprintf(
		"(&(objectClass=groupOfUniqueNames)(%s=%s))",
		c.config.GroupNameAttr,
		ldap.EscapeFilter(group),
	)

	searchRequest := ldap.NewSearchRequest(
		c.config.GroupBranch,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		c.config.Timeout,
		false,
		filter,
		[]string{c.config.GroupNameAttr, c.config.MemberAttr, "dn"},
		nil,
	)

	searchResult, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search for group: %w", err)
	}

	switch len(searchResult.Entries) {
	case 0:
		return nil, ErrGroupNotFound
	case 1:
		return searchResult.Entries[0], nil
	default:
		return nil, ErrAmbiguousResult
	}
}

// EnsureGroupMember makes sure the user's canonical DN is present in the
// configured member group. Calling it for an existing member performs a
// read but no write.
func (c *Client) EnsureGroupMember(username string) error {
	conn, err := c.connect()
	if err != nil {
		return err
	}

	defer closeConn(conn)

	if errBind := c.bindService(conn); errBind != nil {
		return errBind
	}

	group, errSearch := c.searchGroupEntry(conn, c.config.MemberGroup)
	if errSearch != nil {
		return errSearch
	}

	memberDN := c.CanonicalDN(username)
	for _, member := range group.GetAttributeValues(c.config.MemberAttr) {
		if strings.EqualFold(member, memberDN) {
			return nil
		}
	}

	modify := ldap.NewModifyRequest(group.DN, nil)
	modify.Add(c.config.MemberAttr, []string{memberDN})

	if errModify := conn.Modify(modify); errModify != nil {
		return fmt.Errorf("failed to add %s to group %s: %w", memberDN, c.config.MemberGroup, errModify)
	}

	return nil
}

// CreateUser creates a new person entry under the people branch.
func (c *Client) CreateUser(email, username, password string) error {
	conn, err := c.connect()
	if err != nil {
		return err
	}

	defer closeConn(conn)

	if errBind := c.bindService(conn); errBind != nil {
		return errBind
	}

	add := ldap.NewAddRequest(c.CanonicalDN(username), nil)
	add.Attribute("objectClass", []string{"top", "person", "organizationalPerson", "inetOrgPerson"})
	add.Attribute(c.config.UserRDNAttr, []string{username})
	add.Attribute("cn", []string{username})
	add.Attribute("sn", []string{username})
	add.Attribute(c.config.UsernameAttr, []string{username})
	add.Attribute(c.config.EmailAttr, []string{email})
	add.Attribute("userPassword", []string{password})

	if errAdd := conn.Add(add); errAdd != nil {
		return fmt.Errorf("failed to create user %s: %w", username, errAdd)
	}

	return nil
}
