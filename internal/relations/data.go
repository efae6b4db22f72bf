// Package relations translates the integration payloads exchanged with peer
// components into typed data and back.
package relations

import (
	"fmt"
	"net"
	"strconv"

	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
)

// Payload keys shared with peer components.
const (
	keyAMFIPAddress = "amf_ip_address"
	keyAMFPort      = "amf_port"
	keyAMFHostname  = "amf_hostname"
	keyF1IPAddress  = "f1_ip_address"
	keyF1Port       = "f1_port"
	keyGNBName      = "gnb_name"
	keyTAC          = "tac"
)

const (
	// defaultAMFPort is the NGAP SCTP port assumed when the core does not
	// announce one.
	defaultAMFPort = 38412
	// DefaultDUF1Port is assumed until the DU announces its own F1 port.
	DefaultDUF1Port = 2153
)

// CoreNetworkData is the inbound AMF descriptor. It is absent, not an error,
// until the core network publishes it.
type CoreNetworkData struct {
	IPAddress string
	Port      int
	// Hostname is the optional name the core announces alongside the
	// address. Configuration rendering always binds to the address.
	Hostname string
}

// ParseCoreData interprets the inbound core-network payload. A payload
// without an AMF address means the peer has not published yet and yields
// (nil, nil). A malformed published value is an error.
func ParseCoreData(payload map[string]string) (*CoreNetworkData, error) {
	ip, ok := payload[keyAMFIPAddress]
	if !ok || ip == "" {
		return nil, nil
	}
	if net.ParseIP(ip) == nil {
		return nil, fmt.Errorf("core network data: %q is not an IP address", ip)
	}
	data := &CoreNetworkData{
		IPAddress: ip,
		Port:      defaultAMFPort,
		Hostname:  payload[keyAMFHostname],
	}
	if raw, ok := payload[keyAMFPort]; ok && raw != "" {
		port, err := strconv.ParseUint(raw, 10, 16)
		if err != nil || port == 0 {
			return nil, fmt.Errorf("core network data: invalid amf_port %q", raw)
		}
		data.Port = int(port)
	}
	return data, nil
}

// F1Data is the outbound F1 endpoint descriptor.
type F1Data struct {
	IPAddress string
	Port      int
}

// BuildF1Data derives the outbound F1 descriptor from the options. The
// address is the host part of the configured F1 CIDR.
func BuildF1Data(cfg *cuconfig.Config) F1Data {
	ip, _, _ := net.ParseCIDR(cfg.F1IPAddress)
	return F1Data{IPAddress: ip.String(), Port: cfg.F1Port}
}

// Payload is the wire form of the F1 descriptor.
func (d F1Data) Payload() map[string]string {
	return map[string]string{
		keyF1IPAddress: d.IPAddress,
		keyF1Port:      strconv.Itoa(d.Port),
	}
}

// DUF1Port reads the downlink F1 port announced by the DU, falling back to
// the conventional default when absent or unusable.
func DUF1Port(payload map[string]string) int {
	raw, ok := payload[keyF1Port]
	if !ok || raw == "" {
		return DefaultDUF1Port
	}
	port, err := strconv.ParseUint(raw, 10, 16)
	if err != nil || port == 0 {
		return DefaultDUF1Port
	}
	return int(port)
}

// GNBIdentity is published for components that need to know which gNB this
// CU belongs to.
type GNBIdentity struct {
	Name string
	TAC  int
}

// Payload is the wire form of the identity descriptor.
func (g GNBIdentity) Payload() map[string]string {
	return map[string]string{
		keyGNBName: g.Name,
		keyTAC:     strconv.Itoa(g.TAC),
	}
}
