package netattach

import (
	"encoding/json"
	"fmt"

	nadv1 "github.com/k8snetworkplumbingwg/network-attachment-definition-client/pkg/apis/k8s.cni.cncf.io/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
)

// cniConfig is the CNI configuration embedded in an attachment definition.
// Field order is fixed so the marshalled form is stable across passes.
type cniConfig struct {
	CNIVersion string     `json:"cniVersion"`
	Type       string     `json:"type"`
	Bridge     string     `json:"bridge,omitempty"`
	Master     string     `json:"master,omitempty"`
	Device     string     `json:"device,omitempty"`
	IPAM       ipamConfig `json:"ipam"`
	Routes     []cniRoute `json:"routes,omitempty"`
}

type ipamConfig struct {
	Type         string           `json:"type"`
	Addresses    []ipamAddress    `json:"addresses"`
	Capabilities ipamCapabilities `json:"capabilities"`
}

type ipamAddress struct {
	Address string `json:"address"`
}

type ipamCapabilities struct {
	Mac bool `json:"mac"`
}

type cniRoute struct {
	Dst string `json:"dst"`
	GW  string `json:"gw"`
}

// Manifest builds the NetworkAttachmentDefinition resource for one
// attachment.
func Manifest(a Attachment, namespace string) (*nadv1.NetworkAttachmentDefinition, error) {
	cfg := cniConfig{
		CNIVersion: "0.3.1",
		IPAM: ipamConfig{
			Type:         "static",
			Addresses:    []ipamAddress{{Address: a.IPAddress}},
			Capabilities: ipamCapabilities{Mac: true},
		},
	}
	for _, r := range a.Routes {
		cfg.Routes = append(cfg.Routes, cniRoute{Dst: r.Destination, GW: r.Gateway})
	}
	switch a.CNIType {
	case cuconfig.CNIBridge:
		cfg.Type = "bridge"
		cfg.Bridge = a.Bridge
	case cuconfig.CNIMacvlan:
		cfg.Type = "macvlan"
		cfg.Master = a.Master
	case cuconfig.CNIHostDevice:
		cfg.Type = "host-device"
		cfg.Device = a.Master
	default:
		return nil, fmt.Errorf("unsupported cni type %q", a.CNIType)
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal cni config for %s: %w", a.Name, err)
	}
	return &nadv1.NetworkAttachmentDefinition{
		ObjectMeta: metav1.ObjectMeta{
			Name:      a.Name,
			Namespace: namespace,
		},
		Spec: nadv1.NetworkAttachmentDefinitionSpec{
			Config: string(raw),
		},
	}, nil
}
