package stacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2kk/stackctl/internal/config"
	"github.com/v2kk/stackctl/internal/graph"
	"github.com/v2kk/stackctl/internal/provider/awscloud"
	"github.com/v2kk/stackctl/internal/provider/hetzner"
	"github.com/v2kk/stackctl/internal/resource"
	"github.com/v2kk/stackctl/internal/stack"
)

func awsConfig() *config.Set {
	return config.NewSet(StackAWS, map[string]string{
		"account_id":            "123456789012",
		"sso_identity_store_id": "d-9667059103",
	})
}

func vmConfig() *config.Set {
	return config.NewSet(StackVMHcloud, map[string]string{
		"network_ip_range":            "10.0.0.0/16",
		"network_subnet_dmz_ip_range": "10.0.1.0/24",
	})
}

func TestNewRegistry_KnowsBothStacks(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)
	assert.Equal(t, []string{StackAWS, StackVMHcloud}, r.Names())
}

func TestNewRegistry_UnknownStack(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	_, err = r.Load("gcp", config.NewSet("gcp", nil))
	assert.True(t, stack.IsUnknownStack(err))
}

func TestBuildAWS_MissingAccountIDFailsEarly(t *testing.T) {
	_, err := BuildAWS(config.NewSet(StackAWS, map[string]string{
		"sso_identity_store_id": "d-9667059103",
	}))
	require.Error(t, err)
	assert.True(t, config.IsMissingConfiguration(err))

	var missing *config.MissingConfigurationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "account_id", missing.Key)
	assert.Equal(t, StackAWS, missing.Stack)
}

func TestBuildAWS_DeclaresValidGraph(t *testing.T) {
	stk, err := BuildAWS(awsConfig())
	require.NoError(t, err)

	g, err := graph.Build(stk.Declarations())
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	assert.Len(t, order, 9)

	pos := make(map[string]int)
	for i, d := range order {
		pos[d.Key()] = i
	}

	membership := resource.Key(awscloud.KindGroupMembership, "admins-v2kk")
	assert.Less(t, pos[resource.Key(awscloud.KindGroup, "admins")], pos[membership])
	assert.Less(t, pos[resource.Key(awscloud.KindUser, "v2kk")], pos[membership])

	assignment := resource.Key(awscloud.KindAccountAssignment, "administrator-admins")
	assert.Less(t, pos[resource.Key(awscloud.KindPermissionSet, "administrator")], pos[assignment])
	assert.Less(t, pos[resource.Key(awscloud.KindSSOInstances, "sso")], pos[resource.Key(awscloud.KindPermissionSet, "administrator")])

	assert.Less(t, pos[resource.Key(awscloud.KindKMSKey, "hcloud_token")], pos[resource.Key(awscloud.KindKMSAlias, "hcloud_token")])
}

func TestBuildAWS_UsesOnlyTheAWSNamespace(t *testing.T) {
	stk, err := BuildAWS(awsConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"aws"}, stk.Namespaces())
}

func TestBuildVMHcloud_MissingRangeFailsEarly(t *testing.T) {
	_, err := BuildVMHcloud(config.NewSet(StackVMHcloud, map[string]string{
		"network_ip_range": "10.0.0.0/16",
	}))
	require.Error(t, err)

	var missing *config.MissingConfigurationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "network_subnet_dmz_ip_range", missing.Key)
}

func TestBuildVMHcloud_ServerOrdersAfterSubnet(t *testing.T) {
	stk, err := BuildVMHcloud(vmConfig())
	require.NoError(t, err)

	g, err := graph.Build(stk.Declarations())
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	require.Len(t, order, 3)

	var keys []string
	for _, d := range order {
		keys = append(keys, d.Key())
	}
	assert.Equal(t, []string{
		resource.Key(hetzner.KindNetwork, "network"),
		resource.Key(hetzner.KindNetworkSubnet, "dmz"),
		resource.Key(hetzner.KindServer, "server"),
	}, keys)
}

func TestBuildVMHcloud_ConfigValuesFlowIntoProperties(t *testing.T) {
	stk, err := BuildVMHcloud(vmConfig())
	require.NoError(t, err)

	byKey := make(map[string]*resource.Declaration)
	for _, d := range stk.Declarations() {
		byKey[d.Key()] = d
	}

	network := byKey[resource.Key(hetzner.KindNetwork, "network")]
	require.NotNil(t, network)
	assert.Equal(t, "10.0.0.0/16", network.Properties["IPRange"])

	subnet := byKey[resource.Key(hetzner.KindNetworkSubnet, "dmz")]
	require.NotNil(t, subnet)
	assert.Equal(t, "10.0.1.0/24", subnet.Properties["IPRange"])
	assert.Equal(t, "ap-southeast", subnet.Properties["NetworkZone"])
}
