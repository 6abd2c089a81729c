package stacks

import (
	"github.com/v2kk/stackctl/internal/config"
	"github.com/v2kk/stackctl/internal/provider/awscloud"
	"github.com/v2kk/stackctl/internal/resource"
	"github.com/v2kk/stackctl/internal/stack"
)

// BuildAWS declares the aws stack: IAM Identity Center groups, the v2kk user,
// the administrator permission set assigned to the admins group, and the KMS
// key that encrypts the Hetzner API token for sops.
func BuildAWS(cfg *config.Set) (*stack.Stack, error) {
	accountID, err := cfg.Require("account_id")
	if err != nil {
		return nil, err
	}
	identityStoreID, err := cfg.Require("sso_identity_store_id")
	if err != nil {
		return nil, err
	}

	b := stack.NewBuilder(StackAWS, cfg)

	instances := b.Lookup("sso", awscloud.KindSSOInstances, nil)

	admins := b.Declare("admins", awscloud.KindGroup, resource.Properties{
		"IdentityStoreId": identityStoreID,
		"DisplayName":     "Admins",
	})
	b.Declare("editors", awscloud.KindGroup, resource.Properties{
		"IdentityStoreId": identityStoreID,
		"DisplayName":     "Editors",
	})

	user := b.Declare("v2kk", awscloud.KindUser, resource.Properties{
		"IdentityStoreId": identityStoreID,
		"UserName":        "v2kk",
		"DisplayName":     "Quyen Dang",
		"GivenName":       "Quyen",
		"FamilyName":      "Dang",
		"Email":           "23162082@student.hcmute.edu.vn",
		"EmailPrimary":    true,
	})

	b.Declare("admins-v2kk", awscloud.KindGroupMembership, resource.Properties{
		"IdentityStoreId": identityStoreID,
		"GroupId":         admins.Ref("GroupId"),
		"MemberId":        user.Ref("UserId"),
	})

	administrator := b.Declare("administrator", awscloud.KindPermissionSet, resource.Properties{
		"InstanceArn": instances.Ref("InstanceArn"),
		"Name":        "administrator",
	})

	b.Declare("administrator-admins", awscloud.KindAccountAssignment, resource.Properties{
		"InstanceArn":      instances.Ref("InstanceArn"),
		"PermissionSetArn": administrator.Ref("PermissionSetArn"),
		"PrincipalId":      admins.Ref("GroupId"),
		"PrincipalType":    "GROUP",
		"TargetId":         accountID,
		"TargetType":       "AWS_ACCOUNT",
	})

	b.Declare("administrator-access", awscloud.KindManagedPolicyAttachment, resource.Properties{
		"InstanceArn":      instances.Ref("InstanceArn"),
		"PermissionSetArn": administrator.Ref("PermissionSetArn"),
		"ManagedPolicyArn": "arn:aws:iam::aws:policy/AdministratorAccess",
	})

	key := b.Declare("hcloud_token", awscloud.KindKMSKey, resource.Properties{
		"Description":          "Symmetric encryption KMS key for hcloud_token",
		"EnableKeyRotation":    true,
		"DeletionWindowInDays": 20,
		"Tags":                 map[string]string{"service": "sops"},
	})

	b.Declare("hcloud_token", awscloud.KindKMSAlias, resource.Properties{
		"Name":        "alias/hcloud_token",
		"TargetKeyId": key.Ref("KeyId"),
	})

	return b.Build()
}
