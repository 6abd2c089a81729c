package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Require(t *testing.T) {
	set := NewSet("aws", map[string]string{"account_id": "123456789012", "empty": ""})

	v, err := set.Require("account_id")
	require.NoError(t, err)
	assert.Equal(t, "123456789012", v)

	_, err = set.Require("sso_identity_store_id")
	require.Error(t, err)
	assert.True(t, IsMissingConfiguration(err))

	var missing *MissingConfigurationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "aws", missing.Stack)
	assert.Equal(t, "sso_identity_store_id", missing.Key)

	// Explicitly empty values count as missing too.
	_, err = set.Require("empty")
	assert.True(t, IsMissingConfiguration(err))
}

func TestSet_GetOr(t *testing.T) {
	set := NewSet("vm-hcloud", map[string]string{"location": "sin"})

	assert.Equal(t, "sin", set.GetOr("location", "fsn1"))
	assert.Equal(t, "fsn1", set.GetOr("other", "fsn1"))

	_, ok := set.Get("other")
	assert.False(t, ok)
}

func TestParseInlineVars(t *testing.T) {
	vars, err := ParseInlineVars("account_id=123,network_ip_range=10.0.0.0/16")
	require.NoError(t, err)
	assert.Equal(t, Vars{"account_id": "123", "network_ip_range": "10.0.0.0/16"}, vars)

	vars, err = ParseInlineVars("")
	require.NoError(t, err)
	assert.Empty(t, vars)

	_, err = ParseInlineVars("novalue")
	assert.Error(t, err)
}

func TestMergeVars_LaterSetsWin(t *testing.T) {
	merged := MergeVars(Vars{"a": "1", "b": "1"}, Vars{"b": "2"}, Vars{"a": "3"})
	assert.Equal(t, Vars{"a": "3", "b": "2"}, merged)
}
