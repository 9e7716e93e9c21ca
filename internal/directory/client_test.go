package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(&Config{
		Host:         "ldap.housearatus.space",
		Port:         636,
		PeopleBranch: "ou=people,dc=housearatus,dc=space",
		GroupBranch:  "ou=groups,dc=housearatus,dc=space",
	})

	assert.Equal(t, "uniqueIdentifier", client.config.UserRDNAttr)
	assert.Equal(t, "uid", client.config.UsernameAttr)
	assert.Equal(t, "mail", client.config.EmailAttr)
	assert.Equal(t, "cn", client.config.GroupNameAttr)
	assert.Equal(t, "uniqueMember", client.config.MemberAttr)
	assert.Equal(t, "harat-users", client.config.MemberGroup)
	assert.Equal(t, 2, client.config.Timeout)
}

func TestNewClientKeepsOverrides(t *testing.T) {
	client := NewClient(&Config{
		UserRDNAttr: "cn",
		MemberGroup: "crew",
		Timeout:     10,
	})

	assert.Equal(t, "cn", client.config.UserRDNAttr)
	assert.Equal(t, "crew", client.config.MemberGroup)
	assert.Equal(t, 10, client.config.Timeout)
}

func TestCanonicalDN(t *testing.T) {
	client := NewClient(&Config{
		PeopleBranch: "ou=people,dc=housearatus,dc=space",
	})

	assert.Equal(t,
		"uniqueIdentifier=jdoe,ou=people,dc=housearatus,dc=space",
		client.CanonicalDN("jdoe"),
	)
}

func TestCanonicalDNEscapesSpecialCharacters(t *testing.T) {
	client := NewClient(&Config{
		PeopleBranch: "ou=people,dc=housearatus,dc=space",
	})

	dn := client.CanonicalDN("doe, john")

	// Commas in the RDN value must not terminate the RDN.
	assert.Equal(t, "uniqueIdentifier=doe\\, john,ou=people,dc=housearatus,dc=space", dn)
}
