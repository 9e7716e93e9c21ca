package config

import (
	"time"

	"github.com/house-aratus/membership-api/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain       string // domain name for the webserver
	Port         int    // listening port for the webserver
	ShutDownTime int    // wait time for shutdown
	URL          string // base url for the webserver
	FrontURL     string // base url of the frontend, used for SSO redirects
}

// Auth groups all authentication related settings.
type Auth struct {
	JWT       JWT
	Directory Directory
	Sso       Sso
}

// JWT holds access token signing settings.
type JWT struct {
	Secret string        // HMAC signing secret
	Issuer string        // iss claim
	TTL    time.Duration // access token lifetime
}

// Directory holds LDAP directory settings.
type Directory struct {
	Host         string // directory hostname or IP
	Port         int    // directory port (389 plain, 636 ldaps)
	UseSSL       bool   // connect with ldaps
	UseTLS       bool   // upgrade the connection with StartTLS
	SkipVerify   bool   // skip tls certificate verification (testing only)
	BindDN       string // service account DN for searches and writes
	BindPassword string // service account password
	PeopleBranch string // branch holding person entries, e.g. ou=people,dc=housearatus,dc=space
	GroupBranch  string // branch holding group entries
	MemberGroup  string // canonical group every member is added to
	Timeout      int    // connect timeout in seconds
}

// Sso holds EVE Online SSO settings.
type Sso struct {
	ClientID     string   // OAuth2 client id
	SecretKey    string   // OAuth2 client secret
	AuthorizeURL string   // provider authorize endpoint
	TokenURL     string   // provider token endpoint
	VerifyURL    string   // provider verify endpoint
	CallbackURL  string   // our callback endpoint as registered with the provider
	Scopes       []string // requested ESI scopes
	StateTTL     time.Duration
}

// DefaultStateTTL is the pending SSO state lifetime used when none is configured.
const DefaultStateTTL = 5 * time.Minute
