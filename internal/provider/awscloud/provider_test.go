package awscloud

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	ssotypes "github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/v2kk/stackctl/internal/provider"
	"github.com/v2kk/stackctl/internal/resource"
)

type fakeIdentityStore struct {
	IdentityStoreClient

	createGroupIn      *identitystore.CreateGroupInput
	createUserIn       *identitystore.CreateUserInput
	createMembershipIn *identitystore.CreateGroupMembershipInput
	deleteGroupIn      *identitystore.DeleteGroupInput
}

func (f *fakeIdentityStore) CreateGroup(_ context.Context, in *identitystore.CreateGroupInput, _ ...func(*identitystore.Options)) (*identitystore.CreateGroupOutput, error) {
	f.createGroupIn = in
	return &identitystore.CreateGroupOutput{GroupId: aws.String("g-1"), IdentityStoreId: in.IdentityStoreId}, nil
}

func (f *fakeIdentityStore) CreateUser(_ context.Context, in *identitystore.CreateUserInput, _ ...func(*identitystore.Options)) (*identitystore.CreateUserOutput, error) {
	f.createUserIn = in
	return &identitystore.CreateUserOutput{UserId: aws.String("u-1"), IdentityStoreId: in.IdentityStoreId}, nil
}

func (f *fakeIdentityStore) CreateGroupMembership(_ context.Context, in *identitystore.CreateGroupMembershipInput, _ ...func(*identitystore.Options)) (*identitystore.CreateGroupMembershipOutput, error) {
	f.createMembershipIn = in
	return &identitystore.CreateGroupMembershipOutput{MembershipId: aws.String("m-1"), IdentityStoreId: in.IdentityStoreId}, nil
}

func (f *fakeIdentityStore) DeleteGroup(_ context.Context, in *identitystore.DeleteGroupInput, _ ...func(*identitystore.Options)) (*identitystore.DeleteGroupOutput, error) {
	f.deleteGroupIn = in
	return &identitystore.DeleteGroupOutput{}, nil
}

type fakeSSOAdmin struct {
	SSOAdminClient

	instances          []ssotypes.InstanceMetadata
	createPermissionIn *ssoadmin.CreatePermissionSetInput
	attachPolicyIn     *ssoadmin.AttachManagedPolicyToPermissionSetInput
}

func (f *fakeSSOAdmin) ListInstances(_ context.Context, _ *ssoadmin.ListInstancesInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.ListInstancesOutput, error) {
	return &ssoadmin.ListInstancesOutput{Instances: f.instances}, nil
}

func (f *fakeSSOAdmin) CreatePermissionSet(_ context.Context, in *ssoadmin.CreatePermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.CreatePermissionSetOutput, error) {
	f.createPermissionIn = in
	return &ssoadmin.CreatePermissionSetOutput{
		PermissionSet: &ssotypes.PermissionSet{PermissionSetArn: aws.String("arn:ps")},
	}, nil
}

func (f *fakeSSOAdmin) AttachManagedPolicyToPermissionSet(_ context.Context, in *ssoadmin.AttachManagedPolicyToPermissionSetInput, _ ...func(*ssoadmin.Options)) (*ssoadmin.AttachManagedPolicyToPermissionSetOutput, error) {
	f.attachPolicyIn = in
	return &ssoadmin.AttachManagedPolicyToPermissionSetOutput{}, nil
}

type fakeKMS struct {
	KMSClient

	createKeyIn   *kms.CreateKeyInput
	rotationIn    *kms.EnableKeyRotationInput
	scheduleIn    *kms.ScheduleKeyDeletionInput
	createAliasIn *kms.CreateAliasInput
}

func (f *fakeKMS) CreateKey(_ context.Context, in *kms.CreateKeyInput, _ ...func(*kms.Options)) (*kms.CreateKeyOutput, error) {
	f.createKeyIn = in
	return &kms.CreateKeyOutput{KeyMetadata: &kmstypes.KeyMetadata{
		KeyId: aws.String("key-1"),
		Arn:   aws.String("arn:key-1"),
	}}, nil
}

func (f *fakeKMS) EnableKeyRotation(_ context.Context, in *kms.EnableKeyRotationInput, _ ...func(*kms.Options)) (*kms.EnableKeyRotationOutput, error) {
	f.rotationIn = in
	return &kms.EnableKeyRotationOutput{}, nil
}

func (f *fakeKMS) ScheduleKeyDeletion(_ context.Context, in *kms.ScheduleKeyDeletionInput, _ ...func(*kms.Options)) (*kms.ScheduleKeyDeletionOutput, error) {
	f.scheduleIn = in
	return &kms.ScheduleKeyDeletionOutput{}, nil
}

func (f *fakeKMS) CreateAlias(_ context.Context, in *kms.CreateAliasInput, _ ...func(*kms.Options)) (*kms.CreateAliasOutput, error) {
	f.createAliasIn = in
	return &kms.CreateAliasOutput{}, nil
}

func TestCreate_Group(t *testing.T) {
	identity := &fakeIdentityStore{}
	p := NewWithClients(identity, &fakeSSOAdmin{}, &fakeKMS{}, nil)

	created, err := p.Create(context.Background(), KindGroup, "admins", resource.Properties{
		"IdentityStoreId": "d-123",
		"DisplayName":     "Admins",
	})
	require.NoError(t, err)

	assert.Equal(t, "g-1", created.ID)
	assert.Equal(t, "d-123", created.Outputs["IdentityStoreId"])
	assert.Equal(t, "Admins", aws.ToString(identity.createGroupIn.DisplayName))
}

func TestCreate_UserCarriesNameAndEmail(t *testing.T) {
	identity := &fakeIdentityStore{}
	p := NewWithClients(identity, &fakeSSOAdmin{}, &fakeKMS{}, nil)

	created, err := p.Create(context.Background(), KindUser, "v2kk", resource.Properties{
		"IdentityStoreId": "d-123",
		"UserName":        "v2kk",
		"DisplayName":     "Quyen Dang",
		"GivenName":       "Quyen",
		"FamilyName":      "Dang",
		"Email":           "23162082@student.hcmute.edu.vn",
		"EmailPrimary":    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", created.ID)

	in := identity.createUserIn
	require.NotNil(t, in.Name)
	assert.Equal(t, "Quyen", aws.ToString(in.Name.GivenName))
	assert.Equal(t, "Dang", aws.ToString(in.Name.FamilyName))
	require.Len(t, in.Emails, 1)
	assert.True(t, in.Emails[0].Primary)
}

func TestCreate_MembershipRequiresGroupAndMember(t *testing.T) {
	identity := &fakeIdentityStore{}
	p := NewWithClients(identity, &fakeSSOAdmin{}, &fakeKMS{}, nil)

	_, err := p.Create(context.Background(), KindGroupMembership, "admins-v2kk", resource.Properties{
		"IdentityStoreId": "d-123",
		"GroupId":         "g-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MemberId")
	assert.Nil(t, identity.createMembershipIn)
}

func TestRead_SSOInstances(t *testing.T) {
	sso := &fakeSSOAdmin{instances: []ssotypes.InstanceMetadata{{
		InstanceArn:     aws.String("arn:instance"),
		IdentityStoreId: aws.String("d-123"),
	}}}
	p := NewWithClients(&fakeIdentityStore{}, sso, &fakeKMS{}, nil)

	outputs, err := p.Read(context.Background(), KindSSOInstances, "sso", nil)
	require.NoError(t, err)
	assert.Equal(t, "arn:instance", outputs["InstanceArn"])
	assert.Equal(t, "d-123", outputs["IdentityStoreId"])
}

func TestRead_SSOInstancesEmptyAccount(t *testing.T) {
	p := NewWithClients(&fakeIdentityStore{}, &fakeSSOAdmin{}, &fakeKMS{}, nil)

	_, err := p.Read(context.Background(), KindSSOInstances, "sso", nil)
	assert.Error(t, err)
}

func TestCreate_ManagedPolicyAttachment(t *testing.T) {
	sso := &fakeSSOAdmin{}
	p := NewWithClients(&fakeIdentityStore{}, sso, &fakeKMS{}, nil)

	created, err := p.Create(context.Background(), KindManagedPolicyAttachment, "administrator-access", resource.Properties{
		"InstanceArn":      "arn:instance",
		"PermissionSetArn": "arn:ps",
		"ManagedPolicyArn": "arn:aws:iam::aws:policy/AdministratorAccess",
	})
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::aws:policy/AdministratorAccess", created.ID)
	assert.Equal(t, "arn:ps", aws.ToString(sso.attachPolicyIn.PermissionSetArn))
}

func TestCreate_UnsupportedKind(t *testing.T) {
	p := NewWithClients(&fakeIdentityStore{}, &fakeSSOAdmin{}, &fakeKMS{}, nil)

	_, err := p.Create(context.Background(), "aws:s3:Bucket", "b", nil)
	require.Error(t, err)
	assert.True(t, provider.IsUnsupportedKind(err))
}

func TestCreate_KMSKeyEnablesRotationAndTags(t *testing.T) {
	kmsFake := &fakeKMS{}
	p := NewWithClients(&fakeIdentityStore{}, &fakeSSOAdmin{}, kmsFake, nil)

	created, err := p.Create(context.Background(), KindKMSKey, "hcloud_token", resource.Properties{
		"Description":          "Symmetric encryption KMS key for hcloud_token",
		"EnableKeyRotation":    true,
		"DeletionWindowInDays": 20,
		"Tags":                 map[string]string{"service": "sops"},
	})
	require.NoError(t, err)
	assert.Equal(t, "key-1", created.ID)
	assert.Equal(t, "20", created.Outputs["DeletionWindowInDays"])

	require.NotNil(t, kmsFake.rotationIn)
	assert.Equal(t, "key-1", aws.ToString(kmsFake.rotationIn.KeyId))
	require.Len(t, kmsFake.createKeyIn.Tags, 1)
	assert.Equal(t, "service", aws.ToString(kmsFake.createKeyIn.Tags[0].TagKey))
}

func TestDelete_KMSKeyHonorsStoredDeletionWindow(t *testing.T) {
	kmsFake := &fakeKMS{}
	p := NewWithClients(&fakeIdentityStore{}, &fakeSSOAdmin{}, kmsFake, nil)

	err := p.Delete(context.Background(), KindKMSKey, "key-1", resource.Properties{
		"DeletionWindowInDays": "20",
	})
	require.NoError(t, err)
	assert.Equal(t, int32(20), aws.ToInt32(kmsFake.scheduleIn.PendingWindowInDays))
}

func TestCreate_KMSAlias(t *testing.T) {
	kmsFake := &fakeKMS{}
	p := NewWithClients(&fakeIdentityStore{}, &fakeSSOAdmin{}, kmsFake, nil)

	created, err := p.Create(context.Background(), KindKMSAlias, "hcloud_token", resource.Properties{
		"Name":        "alias/hcloud_token",
		"TargetKeyId": "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "alias/hcloud_token", created.ID)
	assert.Equal(t, "key-1", aws.ToString(kmsFake.createAliasIn.TargetKeyId))
}

func TestDelete_GroupUsesStoredStoreID(t *testing.T) {
	identity := &fakeIdentityStore{}
	p := NewWithClients(identity, &fakeSSOAdmin{}, &fakeKMS{}, nil)

	err := p.Delete(context.Background(), KindGroup, "g-1", resource.Properties{
		"IdentityStoreId": "d-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "g-1", aws.ToString(identity.deleteGroupIn.GroupId))
	assert.Equal(t, "d-123", aws.ToString(identity.deleteGroupIn.IdentityStoreId))
}
