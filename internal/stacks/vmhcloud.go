package stacks

import (
	"github.com/v2kk/stackctl/internal/config"
	"github.com/v2kk/stackctl/internal/provider/hetzner"
	"github.com/v2kk/stackctl/internal/resource"
	"github.com/v2kk/stackctl/internal/stack"
)

// BuildVMHcloud declares the vm-hcloud stack: a private network with a dmz
// subnet and one server attached to it with a fixed private IP plus aliases.
func BuildVMHcloud(cfg *config.Set) (*stack.Stack, error) {
	networkRange, err := cfg.Require("network_ip_range")
	if err != nil {
		return nil, err
	}
	subnetRange, err := cfg.Require("network_subnet_dmz_ip_range")
	if err != nil {
		return nil, err
	}

	b := stack.NewBuilder(StackVMHcloud, cfg)

	network := b.Declare("network", hetzner.KindNetwork, resource.Properties{
		"Name":    "network",
		"IPRange": networkRange,
	})

	subnet := b.Declare("dmz", hetzner.KindNetworkSubnet, resource.Properties{
		"NetworkId":   network.Ref("ID"),
		"Type":        "cloud",
		"NetworkZone": "ap-southeast",
		"IPRange":     subnetRange,
	})

	// The attachment IP must land inside the dmz subnet, which the reference
	// to the network alone does not order. Hence the explicit dependency.
	b.Declare("server", hetzner.KindServer, resource.Properties{
		"Name":       "server",
		"ServerType": "cpx11",
		"Image":      "ubuntu-24.04",
		"Location":   "sin",
		"Networks": []any{
			resource.Properties{
				"NetworkId": network.Ref("ID"),
				"IP":        "10.0.1.5",
				"AliasIPs":  []any{"10.0.1.6", "10.0.1.7"},
			},
		},
	}).DependsOn(subnet)

	return b.Build()
}
