package awscloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	ssotypes "github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"

	"github.com/v2kk/stackctl/internal/provider"
	"github.com/v2kk/stackctl/internal/resource"
)

// readSSOInstances resolves the account's IAM Identity Center instance. The
// instance cannot be created programmatically, so it is a read-only lookup.
func (p *Provider) readSSOInstances(ctx context.Context) (resource.Outputs, error) {
	out, err := p.sso.ListInstances(ctx, &ssoadmin.ListInstancesInput{})
	if err != nil {
		return nil, fmt.Errorf("list SSO instances: %w", err)
	}
	if len(out.Instances) == 0 {
		return nil, fmt.Errorf("no IAM Identity Center instance found in this account")
	}

	inst := out.Instances[0]
	return resource.Outputs{
		"InstanceArn":     aws.ToString(inst.InstanceArn),
		"IdentityStoreId": aws.ToString(inst.IdentityStoreId),
	}, nil
}

func (p *Provider) createPermissionSet(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	instanceArn, err := provider.StringProp(props, "InstanceArn")
	if err != nil {
		return nil, err
	}
	name, err := provider.StringProp(props, "Name")
	if err != nil {
		return nil, err
	}

	input := &ssoadmin.CreatePermissionSetInput{
		InstanceArn: aws.String(instanceArn),
		Name:        aws.String(name),
	}
	if desc := provider.StringPropOr(props, "Description", ""); desc != "" {
		input.Description = aws.String(desc)
	}
	if dur := provider.StringPropOr(props, "SessionDuration", ""); dur != "" {
		input.SessionDuration = aws.String(dur)
	}

	out, err := p.sso.CreatePermissionSet(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create permission set %q: %w", name, err)
	}

	arn := aws.ToString(out.PermissionSet.PermissionSetArn)
	p.logger.Info("permission set created", "name", name, "arn", arn)
	return &provider.Created{
		ID: arn,
		Outputs: resource.Outputs{
			"PermissionSetArn": arn,
			"InstanceArn":      instanceArn,
		},
	}, nil
}

func (p *Provider) deletePermissionSet(ctx context.Context, id string, props resource.Properties) error {
	instanceArn, err := provider.StringProp(props, "InstanceArn")
	if err != nil {
		return err
	}
	if _, err := p.sso.DeletePermissionSet(ctx, &ssoadmin.DeletePermissionSetInput{
		InstanceArn:      aws.String(instanceArn),
		PermissionSetArn: aws.String(id),
	}); err != nil {
		return fmt.Errorf("delete permission set %s: %w", id, err)
	}
	return nil
}

func (p *Provider) createAccountAssignment(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	instanceArn, err := provider.StringProp(props, "InstanceArn")
	if err != nil {
		return nil, err
	}
	permissionSetArn, err := provider.StringProp(props, "PermissionSetArn")
	if err != nil {
		return nil, err
	}
	principalID, err := provider.StringProp(props, "PrincipalId")
	if err != nil {
		return nil, err
	}
	targetID, err := provider.StringProp(props, "TargetId")
	if err != nil {
		return nil, err
	}
	principalType := provider.StringPropOr(props, "PrincipalType", string(ssotypes.PrincipalTypeGroup))
	targetType := provider.StringPropOr(props, "TargetType", string(ssotypes.TargetTypeAwsAccount))

	out, err := p.sso.CreateAccountAssignment(ctx, &ssoadmin.CreateAccountAssignmentInput{
		InstanceArn:      aws.String(instanceArn),
		PermissionSetArn: aws.String(permissionSetArn),
		PrincipalId:      aws.String(principalID),
		PrincipalType:    ssotypes.PrincipalType(principalType),
		TargetId:         aws.String(targetID),
		TargetType:       ssotypes.TargetType(targetType),
	})
	if err != nil {
		return nil, fmt.Errorf("create account assignment (principal %s, account %s): %w", principalID, targetID, err)
	}

	requestID := ""
	if out.AccountAssignmentCreationStatus != nil {
		requestID = aws.ToString(out.AccountAssignmentCreationStatus.RequestId)
	}
	p.logger.Info("account assignment created", "principalId", principalID, "targetId", targetID, "requestId", requestID)

	// Deletion needs the full assignment coordinates, so echo them as outputs.
	return &provider.Created{
		ID: requestID,
		Outputs: resource.Outputs{
			"RequestId":        requestID,
			"InstanceArn":      instanceArn,
			"PermissionSetArn": permissionSetArn,
			"PrincipalId":      principalID,
			"PrincipalType":    principalType,
			"TargetId":         targetID,
			"TargetType":       targetType,
		},
	}, nil
}

func (p *Provider) deleteAccountAssignment(ctx context.Context, props resource.Properties) error {
	instanceArn, err := provider.StringProp(props, "InstanceArn")
	if err != nil {
		return err
	}
	permissionSetArn, err := provider.StringProp(props, "PermissionSetArn")
	if err != nil {
		return err
	}
	principalID, err := provider.StringProp(props, "PrincipalId")
	if err != nil {
		return err
	}
	targetID, err := provider.StringProp(props, "TargetId")
	if err != nil {
		return err
	}

	if _, err := p.sso.DeleteAccountAssignment(ctx, &ssoadmin.DeleteAccountAssignmentInput{
		InstanceArn:      aws.String(instanceArn),
		PermissionSetArn: aws.String(permissionSetArn),
		PrincipalId:      aws.String(principalID),
		PrincipalType:    ssotypes.PrincipalType(provider.StringPropOr(props, "PrincipalType", string(ssotypes.PrincipalTypeGroup))),
		TargetId:         aws.String(targetID),
		TargetType:       ssotypes.TargetType(provider.StringPropOr(props, "TargetType", string(ssotypes.TargetTypeAwsAccount))),
	}); err != nil {
		return fmt.Errorf("delete account assignment (principal %s, account %s): %w", principalID, targetID, err)
	}
	return nil
}

func (p *Provider) attachManagedPolicy(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	instanceArn, err := provider.StringProp(props, "InstanceArn")
	if err != nil {
		return nil, err
	}
	permissionSetArn, err := provider.StringProp(props, "PermissionSetArn")
	if err != nil {
		return nil, err
	}
	policyArn, err := provider.StringProp(props, "ManagedPolicyArn")
	if err != nil {
		return nil, err
	}

	if _, err := p.sso.AttachManagedPolicyToPermissionSet(ctx, &ssoadmin.AttachManagedPolicyToPermissionSetInput{
		InstanceArn:      aws.String(instanceArn),
		PermissionSetArn: aws.String(permissionSetArn),
		ManagedPolicyArn: aws.String(policyArn),
	}); err != nil {
		return nil, fmt.Errorf("attach managed policy %s: %w", policyArn, err)
	}

	p.logger.Info("managed policy attached", "policyArn", policyArn, "permissionSetArn", permissionSetArn)
	return &provider.Created{
		ID: policyArn,
		Outputs: resource.Outputs{
			"InstanceArn":      instanceArn,
			"PermissionSetArn": permissionSetArn,
			"ManagedPolicyArn": policyArn,
		},
	}, nil
}

func (p *Provider) detachManagedPolicy(ctx context.Context, props resource.Properties) error {
	instanceArn, err := provider.StringProp(props, "InstanceArn")
	if err != nil {
		return err
	}
	permissionSetArn, err := provider.StringProp(props, "PermissionSetArn")
	if err != nil {
		return err
	}
	policyArn, err := provider.StringProp(props, "ManagedPolicyArn")
	if err != nil {
		return err
	}

	if _, err := p.sso.DetachManagedPolicyFromPermissionSet(ctx, &ssoadmin.DetachManagedPolicyFromPermissionSetInput{
		InstanceArn:      aws.String(instanceArn),
		PermissionSetArn: aws.String(permissionSetArn),
		ManagedPolicyArn: aws.String(policyArn),
	}); err != nil {
		return fmt.Errorf("detach managed policy %s: %w", policyArn, err)
	}
	return nil
}
