package awscloud

import "github.com/v2kk/stackctl/internal/resource"

// Namespace is the provider namespace for all AWS kinds.
const Namespace = "aws"

// Resource kinds handled by this provider.
const (
	// KindSSOInstances is the read-only lookup of the account's IAM Identity
	// Center instance (instance ARN + identity store ID).
	KindSSOInstances resource.Kind = "aws:ssoadmin:Instances"
	// KindGroup is an identity store group.
	KindGroup resource.Kind = "aws:identitystore:Group"
	// KindUser is an identity store user.
	KindUser resource.Kind = "aws:identitystore:User"
	// KindGroupMembership puts a user into a group.
	KindGroupMembership resource.Kind = "aws:identitystore:GroupMembership"
	// KindPermissionSet is an SSO admin permission set.
	KindPermissionSet resource.Kind = "aws:ssoadmin:PermissionSet"
	// KindAccountAssignment assigns a permission set to a principal on an account.
	KindAccountAssignment resource.Kind = "aws:ssoadmin:AccountAssignment"
	// KindManagedPolicyAttachment attaches an AWS managed policy to a permission set.
	KindManagedPolicyAttachment resource.Kind = "aws:ssoadmin:ManagedPolicyAttachment"
	// KindKMSKey is a symmetric KMS key.
	KindKMSKey resource.Kind = "aws:kms:Key"
	// KindKMSAlias is an alias pointing at a KMS key.
	KindKMSAlias resource.Kind = "aws:kms:Alias"
)
