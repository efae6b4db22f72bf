package cuconfig

import (
	"fmt"
	"net"
	"regexp"
)

// maxTAC is the largest tracking area code encodable in 24 bits.
const maxTAC = 1<<24 - 1

var (
	mccPattern = regexp.MustCompile(`^[0-9]{3}$`)
	mncPattern = regexp.MustCompile(`^[0-9]{2,3}$`)
)

// ValidationError names the first option that failed validation. It is
// permanent: the operator must correct the option before reconciliation can
// proceed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: [%s: %s]", e.Field, e.Reason)
}

// Validate checks the options in a fixed order and reports the first
// violation. Either the whole Config is valid or none of it is used.
func (c *Config) Validate() error {
	switch c.CNIType {
	case CNIBridge, CNIMacvlan, CNIHostDevice:
	default:
		return &ValidationError{Field: "cni-type", Reason: fmt.Sprintf("%q is not one of bridge, macvlan, host-device", c.CNIType)}
	}
	if _, _, err := net.ParseCIDR(c.F1IPAddress); err != nil {
		return &ValidationError{Field: "f1-ip-address", Reason: "must be an IP address in CIDR notation"}
	}
	if _, _, err := net.ParseCIDR(c.N3IPAddress); err != nil {
		return &ValidationError{Field: "n3-ip-address", Reason: "must be an IP address in CIDR notation"}
	}
	if net.ParseIP(c.N3GatewayIP) == nil {
		return &ValidationError{Field: "n3-gateway-ip", Reason: "must be an IP address"}
	}
	if _, _, err := net.ParseCIDR(c.UPFSubnet); err != nil {
		return &ValidationError{Field: "upf-subnet", Reason: "must be a subnet in CIDR notation"}
	}
	if c.F1Port < 1 || c.F1Port > 65535 {
		return &ValidationError{Field: "f1-port", Reason: "must be between 1 and 65535"}
	}
	if !mccPattern.MatchString(c.MCC) {
		return &ValidationError{Field: "mcc", Reason: "must be exactly 3 digits"}
	}
	if !mncPattern.MatchString(c.MNC) {
		return &ValidationError{Field: "mnc", Reason: "must be 2 or 3 digits"}
	}
	if c.SST < 0 || c.SST > 255 {
		return &ValidationError{Field: "sst", Reason: "must be between 0 and 255"}
	}
	if c.TAC < 0 || c.TAC > maxTAC {
		return &ValidationError{Field: "tac", Reason: fmt.Sprintf("must be between 0 and %d", maxTAC)}
	}
	if c.F1InterfaceName == "" {
		return &ValidationError{Field: "f1-interface-name", Reason: "must not be empty"}
	}
	if c.N3InterfaceName == "" {
		return &ValidationError{Field: "n3-interface-name", Reason: "must not be empty"}
	}
	return nil
}
