// Package hetzner implements the Hetzner Cloud provider: private networks,
// subnets, and servers.
package hetzner

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/v2kk/stackctl/internal/provider"
	"github.com/v2kk/stackctl/internal/resource"
)

// Namespace is the provider namespace for all Hetzner Cloud kinds.
const Namespace = "hcloud"

// Resource kinds handled by this provider.
const (
	// KindNetwork is a private network.
	KindNetwork resource.Kind = "hcloud:Network"
	// KindNetworkSubnet is a subnet within a private network.
	KindNetworkSubnet resource.Kind = "hcloud:NetworkSubnet"
	// KindServer is a virtual machine, optionally attached to private networks.
	KindServer resource.Kind = "hcloud:Server"
)

// NetworkAPI is the subset of the hcloud network client the provider uses.
type NetworkAPI interface {
	Create(ctx context.Context, opts hcloud.NetworkCreateOpts) (*hcloud.Network, *hcloud.Response, error)
	Delete(ctx context.Context, network *hcloud.Network) (*hcloud.Response, error)
	AddSubnet(ctx context.Context, network *hcloud.Network, opts hcloud.NetworkAddSubnetOpts) (*hcloud.Action, *hcloud.Response, error)
	DeleteSubnet(ctx context.Context, network *hcloud.Network, opts hcloud.NetworkDeleteSubnetOpts) (*hcloud.Action, *hcloud.Response, error)
}

// ServerAPI is the subset of the hcloud server client the provider uses.
type ServerAPI interface {
	Create(ctx context.Context, opts hcloud.ServerCreateOpts) (hcloud.ServerCreateResult, *hcloud.Response, error)
	AttachToNetwork(ctx context.Context, server *hcloud.Server, opts hcloud.ServerAttachToNetworkOpts) (*hcloud.Action, *hcloud.Response, error)
	DeleteWithResult(ctx context.Context, server *hcloud.Server) (*hcloud.ServerDeleteResult, *hcloud.Response, error)
}

// Provider implements provider.Provider for the "hcloud" namespace.
type Provider struct {
	networks NetworkAPI
	servers  ServerAPI
	logger   *slog.Logger
}

// New builds the provider from an API token.
func New(token string, logger *slog.Logger) (*Provider, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("hcloud API token is empty")
	}
	client := hcloud.NewClient(hcloud.WithToken(token))
	return NewWithClients(&client.Network, &client.Server, logger), nil
}

// NewWithClients builds the provider over explicit clients; tests pass fakes.
func NewWithClients(networks NetworkAPI, servers ServerAPI, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{networks: networks, servers: servers, logger: logger}
}

// Name returns the provider namespace.
func (p *Provider) Name() string {
	return Namespace
}

// Create materializes a Hetzner Cloud declaration.
func (p *Provider) Create(ctx context.Context, kind resource.Kind, name string, props resource.Properties) (*provider.Created, error) {
	switch kind {
	case KindNetwork:
		return p.createNetwork(ctx, props)
	case KindNetworkSubnet:
		return p.createSubnet(ctx, props)
	case KindServer:
		return p.createServer(ctx, props)
	default:
		return nil, &provider.UnsupportedKindError{Provider: Namespace, Kind: kind}
	}
}

// Read is unused: this provider declares no read-only kinds.
func (p *Provider) Read(ctx context.Context, kind resource.Kind, name string, props resource.Properties) (resource.Outputs, error) {
	return nil, &provider.UnsupportedKindError{Provider: Namespace, Kind: kind}
}

// Delete removes a Hetzner Cloud resource.
func (p *Provider) Delete(ctx context.Context, kind resource.Kind, id string, props resource.Properties) error {
	switch kind {
	case KindNetwork:
		return p.deleteNetwork(ctx, id)
	case KindNetworkSubnet:
		return p.deleteSubnet(ctx, props)
	case KindServer:
		return p.deleteServer(ctx, id)
	default:
		return &provider.UnsupportedKindError{Provider: Namespace, Kind: kind}
	}
}

func (p *Provider) createNetwork(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	name, err := provider.StringProp(props, "Name")
	if err != nil {
		return nil, err
	}
	ipRange, err := parseCIDRProp(props, "IPRange")
	if err != nil {
		return nil, err
	}

	network, _, err := p.networks.Create(ctx, hcloud.NetworkCreateOpts{Name: name, IPRange: ipRange})
	if err != nil {
		return nil, fmt.Errorf("create network %q: %w", name, err)
	}

	id := strconv.FormatInt(network.ID, 10)
	p.logger.Info("network created", "name", name, "id", id, "ipRange", ipRange.String())
	return &provider.Created{
		ID: id,
		Outputs: resource.Outputs{
			"ID":      id,
			"Name":    name,
			"IPRange": ipRange.String(),
		},
	}, nil
}

func (p *Provider) deleteNetwork(ctx context.Context, id string) error {
	networkID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("parse network id %q: %w", id, err)
	}
	if _, err := p.networks.Delete(ctx, &hcloud.Network{ID: networkID}); err != nil {
		return fmt.Errorf("delete network %s: %w", id, err)
	}
	return nil
}

func (p *Provider) createSubnet(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	networkIDStr, err := provider.StringProp(props, "NetworkId")
	if err != nil {
		return nil, err
	}
	networkID, err := strconv.ParseInt(networkIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse network id %q: %w", networkIDStr, err)
	}
	ipRange, err := parseCIDRProp(props, "IPRange")
	if err != nil {
		return nil, err
	}
	zone := provider.StringPropOr(props, "NetworkZone", "")
	if zone == "" {
		return nil, fmt.Errorf("missing required property %q", "NetworkZone")
	}

	subnet := hcloud.NetworkSubnet{
		Type:        hcloud.NetworkSubnetType(provider.StringPropOr(props, "Type", string(hcloud.NetworkSubnetTypeCloud))),
		IPRange:     ipRange,
		NetworkZone: hcloud.NetworkZone(zone),
	}
	if _, _, err := p.networks.AddSubnet(ctx, &hcloud.Network{ID: networkID}, hcloud.NetworkAddSubnetOpts{Subnet: subnet}); err != nil {
		return nil, fmt.Errorf("add subnet %s to network %s: %w", ipRange.String(), networkIDStr, err)
	}

	// Subnets carry no identifier of their own; the (network, range) pair is
	// the identity, and deletion needs both.
	id := networkIDStr + "/" + ipRange.String()
	p.logger.Info("subnet added", "networkId", networkIDStr, "ipRange", ipRange.String(), "zone", zone)
	return &provider.Created{
		ID: id,
		Outputs: resource.Outputs{
			"NetworkId": networkIDStr,
			"IPRange":   ipRange.String(),
		},
	}, nil
}

func (p *Provider) deleteSubnet(ctx context.Context, props resource.Properties) error {
	networkIDStr, err := provider.StringProp(props, "NetworkId")
	if err != nil {
		return err
	}
	networkID, err := strconv.ParseInt(networkIDStr, 10, 64)
	if err != nil {
		return fmt.Errorf("parse network id %q: %w", networkIDStr, err)
	}
	ipRange, err := parseCIDRProp(props, "IPRange")
	if err != nil {
		return err
	}

	if _, _, err := p.networks.DeleteSubnet(ctx, &hcloud.Network{ID: networkID}, hcloud.NetworkDeleteSubnetOpts{
		Subnet: hcloud.NetworkSubnet{IPRange: ipRange},
	}); err != nil {
		return fmt.Errorf("delete subnet %s from network %s: %w", ipRange.String(), networkIDStr, err)
	}
	return nil
}

func (p *Provider) createServer(ctx context.Context, props resource.Properties) (*provider.Created, error) {
	name, err := provider.StringProp(props, "Name")
	if err != nil {
		return nil, err
	}
	serverType, err := provider.StringProp(props, "ServerType")
	if err != nil {
		return nil, err
	}
	image, err := provider.StringProp(props, "Image")
	if err != nil {
		return nil, err
	}

	opts := hcloud.ServerCreateOpts{
		Name:       name,
		ServerType: &hcloud.ServerType{Name: serverType},
		Image:      &hcloud.Image{Name: image},
	}
	if location := provider.StringPropOr(props, "Location", ""); location != "" {
		opts.Location = &hcloud.Location{Name: location}
	}

	result, _, err := p.servers.Create(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create server %q: %w", name, err)
	}
	server := result.Server

	attachments, err := provider.SliceProp(props, "Networks")
	if err != nil {
		return nil, err
	}
	for _, raw := range attachments {
		attach, err := parseAttachment(raw)
		if err != nil {
			return nil, fmt.Errorf("server %q: %w", name, err)
		}
		if _, _, err := p.servers.AttachToNetwork(ctx, server, attach); err != nil {
			return nil, fmt.Errorf("attach server %q to network %d: %w", name, attach.Network.ID, err)
		}
		p.logger.Info("server attached to network", "server", name, "networkId", attach.Network.ID, "ip", attach.IP.String())
	}

	id := strconv.FormatInt(server.ID, 10)
	p.logger.Info("server created", "name", name, "id", id, "type", serverType)
	return &provider.Created{
		ID: id,
		Outputs: resource.Outputs{
			"ID":   id,
			"Name": name,
		},
	}, nil
}

func (p *Provider) deleteServer(ctx context.Context, id string) error {
	serverID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("parse server id %q: %w", id, err)
	}
	if _, _, err := p.servers.DeleteWithResult(ctx, &hcloud.Server{ID: serverID}); err != nil {
		return fmt.Errorf("delete server %s: %w", id, err)
	}
	return nil
}

// parseAttachment converts a Networks list entry into attach options.
// An entry is a map with NetworkId, IP, and optional AliasIPs.
func parseAttachment(raw any) (hcloud.ServerAttachToNetworkOpts, error) {
	var opts hcloud.ServerAttachToNetworkOpts

	entry, ok := asStringKeyedMap(raw)
	if !ok {
		return opts, fmt.Errorf("network attachment: expected map, got %T", raw)
	}

	networkIDStr, err := provider.StringProp(entry, "NetworkId")
	if err != nil {
		return opts, err
	}
	networkID, err := strconv.ParseInt(networkIDStr, 10, 64)
	if err != nil {
		return opts, fmt.Errorf("parse network id %q: %w", networkIDStr, err)
	}
	opts.Network = &hcloud.Network{ID: networkID}

	if ipStr := provider.StringPropOr(entry, "IP", ""); ipStr != "" {
		ip := net.ParseIP(ipStr)
		if ip == nil {
			return opts, fmt.Errorf("invalid attachment IP %q", ipStr)
		}
		opts.IP = ip
	}

	aliases, err := provider.SliceProp(entry, "AliasIPs")
	if err != nil {
		return opts, err
	}
	for _, alias := range aliases {
		s, ok := alias.(string)
		if !ok {
			return opts, fmt.Errorf("alias IP: expected string, got %T", alias)
		}
		ip := net.ParseIP(s)
		if ip == nil {
			return opts, fmt.Errorf("invalid alias IP %q", s)
		}
		opts.AliasIPs = append(opts.AliasIPs, ip)
	}

	return opts, nil
}

func asStringKeyedMap(raw any) (resource.Properties, bool) {
	switch m := raw.(type) {
	case resource.Properties:
		return m, true
	case map[string]any:
		return resource.Properties(m), true
	default:
		return nil, false
	}
}

// parseCIDRProp parses a required CIDR-valued property.
func parseCIDRProp(props resource.Properties, key string) (*net.IPNet, error) {
	s, err := provider.StringProp(props, key)
	if err != nil {
		return nil, err
	}
	_, ipNet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("property %q: invalid CIDR %q: %w", key, s, err)
	}
	return ipNet, nil
}
