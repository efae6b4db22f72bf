// Package netattach derives the additional pod network attachments the CU
// workload needs and keeps their cluster resources in place.
package netattach

import (
	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
)

const (
	// nameSuffix is appended to the interface name to form the attachment
	// resource name.
	nameSuffix = "-net"

	f1BridgeName = "f1-br"
	n3BridgeName = "n3-br"
)

// Route is a static route installed alongside an attachment.
type Route struct {
	Destination string
	Gateway     string
}

// Attachment is the desired state for one extra workload interface. It is
// computed fresh from the options every pass; the cluster resource it maps to
// is created when absent and updated when drifted, never deleted here.
type Attachment struct {
	Name      string
	Interface string
	CNIType   cuconfig.CNIType
	IPAddress string
	Gateway   string
	Routes    []Route
	Bridge    string
	Master    string
}

// RequiresHostInterface reports whether the attachment depends on a host
// interface of the same name existing on the node. The check itself is the
// attachment provider's job; this only declares the requirement.
func (a Attachment) RequiresHostInterface() bool {
	return a.CNIType == cuconfig.CNIMacvlan || a.CNIType == cuconfig.CNIHostDevice
}

// Resolve maps the options to the attachments the workload needs. The order
// is fixed, F1 first and N3 second, because the rendered configuration refers
// to the interfaces positionally. Identical options yield structurally
// identical output.
func Resolve(cfg *cuconfig.Config) []Attachment {
	f1 := Attachment{
		Name:      cfg.F1InterfaceName + nameSuffix,
		Interface: cfg.F1InterfaceName,
		CNIType:   cfg.CNIType,
		IPAddress: cfg.F1IPAddress,
	}
	n3 := Attachment{
		Name:      cfg.N3InterfaceName + nameSuffix,
		Interface: cfg.N3InterfaceName,
		CNIType:   cfg.CNIType,
		IPAddress: cfg.N3IPAddress,
		Gateway:   cfg.N3GatewayIP,
		Routes: []Route{
			{Destination: cfg.UPFSubnet, Gateway: cfg.N3GatewayIP},
		},
	}
	switch cfg.CNIType {
	case cuconfig.CNIBridge:
		f1.Bridge = f1BridgeName
		n3.Bridge = n3BridgeName
	case cuconfig.CNIMacvlan, cuconfig.CNIHostDevice:
		f1.Master = cfg.F1InterfaceName
		n3.Master = cfg.N3InterfaceName
	}
	return []Attachment{f1, n3}
}
