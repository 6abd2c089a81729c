package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2kk/stackctl/internal/config"
	"github.com/v2kk/stackctl/internal/resource"
)

func TestBuilder_DuplicateDeclarationIsAnError(t *testing.T) {
	b := NewBuilder("aws", nil)
	b.Declare("admins", "aws:identitystore:Group", nil)
	b.Declare("admins", "aws:identitystore:Group", nil)

	_, err := b.Build()
	require.Error(t, err)
	assert.True(t, IsDuplicateDeclaration(err))

	var dup *DuplicateDeclarationError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "aws", dup.Stack)
	assert.Equal(t, "aws:identitystore:Group/admins", dup.Key)
}

func TestBuilder_SameNameDifferentKindIsAllowed(t *testing.T) {
	b := NewBuilder("aws", nil)
	b.Declare("hcloud_token", "aws:kms:Key", nil)
	b.Declare("hcloud_token", "aws:kms:Alias", nil)

	stk, err := b.Build()
	require.NoError(t, err)
	assert.Len(t, stk.Declarations(), 2)
}

func TestBuilder_PreservesDeclarationOrder(t *testing.T) {
	b := NewBuilder("vm-hcloud", nil)
	b.Declare("network", "hcloud:Network", nil)
	b.Declare("dmz", "hcloud:NetworkSubnet", nil)
	b.Declare("server", "hcloud:Server", nil)

	stk, err := b.Build()
	require.NoError(t, err)

	var names []string
	for _, d := range stk.Declarations() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"network", "dmz", "server"}, names)
}

func TestStack_NamespacesInFirstUseOrder(t *testing.T) {
	b := NewBuilder("mixed", nil)
	b.Declare("key", "aws:kms:Key", nil)
	b.Declare("network", "hcloud:Network", nil)
	b.Declare("alias", "aws:kms:Alias", nil)

	stk, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"aws", "hcloud"}, stk.Namespaces())
}

func TestRegistry_LoadUnknownStack(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("aws", func(cfg *config.Set) (*Stack, error) {
		return NewBuilder("aws", cfg).Build()
	}))

	_, err := r.Load("nope", config.NewSet("nope", nil))
	require.Error(t, err)
	assert.True(t, IsUnknownStack(err))

	var unknown *UnknownStackError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Name)
	assert.Equal(t, []string{"aws"}, unknown.Known)
}

func TestRegistry_RejectsDoubleRegistration(t *testing.T) {
	r := NewRegistry()
	fn := func(cfg *config.Set) (*Stack, error) { return NewBuilder("aws", cfg).Build() }

	require.NoError(t, r.Register("aws", fn))
	assert.Error(t, r.Register("aws", fn))
}

func TestLookup_MarksDeclarationReadOnly(t *testing.T) {
	b := NewBuilder("aws", nil)
	instances := b.Lookup("sso", "aws:ssoadmin:Instances", nil)

	assert.True(t, instances.ReadOnly)
	ref := instances.Ref("InstanceArn")
	assert.Equal(t, resource.Kind("aws:ssoadmin:Instances"), ref.SourceKind)
}
