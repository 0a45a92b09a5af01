package mapping_test

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-amqp2http/pkg/mapping"
)

func TestGroupID(t *testing.T) {
	assert.Equal(t, "ldap_os2mo", mapping.GroupID("ldap", "os2mo"))
	assert.Equal(t, "ldap_ldap", mapping.GroupID("ldap", "ldap"))
}

func TestHandlerID(t *testing.T) {
	groupID := mapping.GroupID("ldap", "os2mo")

	t.Run("carries group id, routing key and url hash", func(t *testing.T) {
		url := "http://ldap/mo2ldap/person"
		sum := sha256.Sum256([]byte(url))
		want := "ldap_os2mo_person_" + hex.EncodeToString(sum[:])[:8]

		got := mapping.HandlerID(groupID, "person", url)
		assert.Equal(t, want, got)
	})

	t.Run("is deterministic", func(t *testing.T) {
		first := mapping.HandlerID(groupID, "person", "http://ldap/mo2ldap/person")
		second := mapping.HandlerID(groupID, "person", "http://ldap/mo2ldap/person")
		assert.Equal(t, first, second)
	})

	t.Run("distinct urls under one routing key do not collide", func(t *testing.T) {
		first := mapping.HandlerID(groupID, "person", "http://ldap/mo2ldap/person1")
		second := mapping.HandlerID(groupID, "person", "http://ldap/mo2ldap/person2")
		require.NotEqual(t, first, second)
	})

	t.Run("hash suffix is 8 hex characters", func(t *testing.T) {
		id := mapping.HandlerID(groupID, "person", "http://ldap/mo2ldap/person")
		suffix := id[len(id)-8:]
		_, err := hex.DecodeString(suffix)
		assert.NoError(t, err)
		assert.Equal(t, "ldap_os2mo_person_", id[:len(id)-8])
	})
}
