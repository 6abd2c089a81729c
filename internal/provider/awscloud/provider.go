// Package awscloud implements the AWS provider: IAM Identity Center
// (identity store + SSO admin) and KMS.
package awscloud

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"

	"github.com/v2kk/stackctl/internal/provider"
	"github.com/v2kk/stackctl/internal/resource"
)

// IdentityStoreClient is the subset of the identity store API the provider
// uses. Narrowed for fake-based tests.
type IdentityStoreClient interface {
	CreateGroup(ctx context.Context, params *identitystore.CreateGroupInput, optFns ...func(*identitystore.Options)) (*identitystore.CreateGroupOutput, error)
	DeleteGroup(ctx context.Context, params *identitystore.DeleteGroupInput, optFns ...func(*identitystore.Options)) (*identitystore.DeleteGroupOutput, error)
	CreateUser(ctx context.Context, params *identitystore.CreateUserInput, optFns ...func(*identitystore.Options)) (*identitystore.CreateUserOutput, error)
	DeleteUser(ctx context.Context, params *identitystore.DeleteUserInput, optFns ...func(*identitystore.Options)) (*identitystore.DeleteUserOutput, error)
	CreateGroupMembership(ctx context.Context, params *identitystore.CreateGroupMembershipInput, optFns ...func(*identitystore.Options)) (*identitystore.CreateGroupMembershipOutput, error)
	DeleteGroupMembership(ctx context.Context, params *identitystore.DeleteGroupMembershipInput, optFns ...func(*identitystore.Options)) (*identitystore.DeleteGroupMembershipOutput, error)
}

// SSOAdminClient is the subset of the SSO admin API the provider uses.
type SSOAdminClient interface {
	ListInstances(ctx context.Context, params *ssoadmin.ListInstancesInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ListInstancesOutput, error)
	CreatePermissionSet(ctx context.Context, params *ssoadmin.CreatePermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.CreatePermissionSetOutput, error)
	DeletePermissionSet(ctx context.Context, params *ssoadmin.DeletePermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DeletePermissionSetOutput, error)
	CreateAccountAssignment(ctx context.Context, params *ssoadmin.CreateAccountAssignmentInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.CreateAccountAssignmentOutput, error)
	DeleteAccountAssignment(ctx context.Context, params *ssoadmin.DeleteAccountAssignmentInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DeleteAccountAssignmentOutput, error)
	AttachManagedPolicyToPermissionSet(ctx context.Context, params *ssoadmin.AttachManagedPolicyToPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.AttachManagedPolicyToPermissionSetOutput, error)
	DetachManagedPolicyFromPermissionSet(ctx context.Context, params *ssoadmin.DetachManagedPolicyFromPermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DetachManagedPolicyFromPermissionSetOutput, error)
}

// KMSClient is the subset of the KMS API the provider uses.
type KMSClient interface {
	CreateKey(ctx context.Context, params *kms.CreateKeyInput, optFns ...func(*kms.Options)) (*kms.CreateKeyOutput, error)
	EnableKeyRotation(ctx context.Context, params *kms.EnableKeyRotationInput, optFns ...func(*kms.Options)) (*kms.EnableKeyRotationOutput, error)
	ScheduleKeyDeletion(ctx context.Context, params *kms.ScheduleKeyDeletionInput, optFns ...func(*kms.Options)) (*kms.ScheduleKeyDeletionOutput, error)
	CreateAlias(ctx context.Context, params *kms.CreateAliasInput, optFns ...func(*kms.Options)) (*kms.CreateAliasOutput, error)
	DeleteAlias(ctx context.Context, params *kms.DeleteAliasInput, optFns ...func(*kms.Options)) (*kms.DeleteAliasOutput, error)
}

// Provider implements provider.Provider for the "aws" namespace.
type Provider struct {
	identity IdentityStoreClient
	sso      SSOAdminClient
	kms      KMSClient
	logger   *slog.Logger
}

// New builds the provider from the default AWS credential chain.
func New(ctx context.Context, logger *slog.Logger) (*Provider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}
	return NewWithClients(
		identitystore.NewFromConfig(cfg),
		ssoadmin.NewFromConfig(cfg),
		kms.NewFromConfig(cfg),
		logger,
	), nil
}

// NewWithClients builds the provider over explicit clients; tests pass fakes.
func NewWithClients(identity IdentityStoreClient, sso SSOAdminClient, kmsClient KMSClient, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{identity: identity, sso: sso, kms: kmsClient, logger: logger}
}

// Name returns the provider namespace.
func (p *Provider) Name() string {
	return Namespace
}

// Create materializes an AWS declaration.
func (p *Provider) Create(ctx context.Context, kind resource.Kind, name string, props resource.Properties) (*provider.Created, error) {
	switch kind {
	case KindGroup:
		return p.createGroup(ctx, props)
	case KindUser:
		return p.createUser(ctx, props)
	case KindGroupMembership:
		return p.createGroupMembership(ctx, props)
	case KindPermissionSet:
		return p.createPermissionSet(ctx, props)
	case KindAccountAssignment:
		return p.createAccountAssignment(ctx, props)
	case KindManagedPolicyAttachment:
		return p.attachManagedPolicy(ctx, props)
	case KindKMSKey:
		return p.createKey(ctx, props)
	case KindKMSAlias:
		return p.createAlias(ctx, props)
	default:
		return nil, &provider.UnsupportedKindError{Provider: Namespace, Kind: kind}
	}
}

// Read resolves read-only AWS declarations.
func (p *Provider) Read(ctx context.Context, kind resource.Kind, name string, props resource.Properties) (resource.Outputs, error) {
	switch kind {
	case KindSSOInstances:
		return p.readSSOInstances(ctx)
	default:
		return nil, &provider.UnsupportedKindError{Provider: Namespace, Kind: kind}
	}
}

// Delete removes an AWS resource. For assignment/attachment kinds the stored
// outputs carry the coordinates the delete call needs.
func (p *Provider) Delete(ctx context.Context, kind resource.Kind, id string, props resource.Properties) error {
	switch kind {
	case KindGroup:
		return p.deleteGroup(ctx, id, props)
	case KindUser:
		return p.deleteUser(ctx, id, props)
	case KindGroupMembership:
		return p.deleteGroupMembership(ctx, id, props)
	case KindPermissionSet:
		return p.deletePermissionSet(ctx, id, props)
	case KindAccountAssignment:
		return p.deleteAccountAssignment(ctx, props)
	case KindManagedPolicyAttachment:
		return p.detachManagedPolicy(ctx, props)
	case KindKMSKey:
		return p.scheduleKeyDeletion(ctx, id, props)
	case KindKMSAlias:
		return p.deleteAlias(ctx, id)
	default:
		return &provider.UnsupportedKindError{Provider: Namespace, Kind: kind}
	}
}
