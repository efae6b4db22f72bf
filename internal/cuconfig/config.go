// Package cuconfig holds the static CU options and their validation rules.
package cuconfig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// CNIType selects how an additional pod interface is realized.
type CNIType string

const (
	CNIBridge     CNIType = "bridge"
	CNIMacvlan    CNIType = "macvlan"
	CNIHostDevice CNIType = "host-device"
)

// Config is one immutable snapshot of the CU options. A new snapshot is
// loaded at the start of every reconciliation pass; validation happens at
// load time, so a Config handed to the engine is always valid.
type Config struct {
	CNIType         CNIType `yaml:"cni-type"`
	F1InterfaceName string  `yaml:"f1-interface-name"`
	F1IPAddress     string  `yaml:"f1-ip-address"`
	F1Port          int     `yaml:"f1-port"`
	N3InterfaceName string  `yaml:"n3-interface-name"`
	N3IPAddress     string  `yaml:"n3-ip-address"`
	N3GatewayIP     string  `yaml:"n3-gateway-ip"`
	UPFSubnet       string  `yaml:"upf-subnet"`
	MCC             string  `yaml:"mcc"`
	MNC             string  `yaml:"mnc"`
	SST             int     `yaml:"sst"`
	TAC             int     `yaml:"tac"`
}

// Default returns a Config carrying the option defaults. Values present in
// the options file override these on load.
func Default() *Config {
	return &Config{
		CNIType:         CNIBridge,
		F1InterfaceName: "f1",
		F1IPAddress:     "192.168.254.7/24",
		F1Port:          2152,
		N3InterfaceName: "n3",
		N3IPAddress:     "192.168.251.6/24",
		N3GatewayIP:     "192.168.251.1",
		UPFSubnet:       "192.168.252.0/24",
		MCC:             "001",
		MNC:             "01",
		SST:             1,
		TAC:             1,
	}
}

// Load reads, parses and validates the options file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML options on top of the defaults and validates the result.
// A well-formed document carrying a value that cannot decode into its
// option's type is a validation error naming that option, not a parse
// failure: the operator must correct the value.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		var terr *yaml.TypeError
		if errors.As(err, &terr) {
			if verr := typeViolation(data); verr != nil {
				return nil, verr
			}
		}
		return nil, fmt.Errorf("parse options file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// typeViolation isolates the first option in document order whose value does
// not decode into the option's type. Returns nil when no single option can
// be blamed.
func typeViolation(data []byte) *ValidationError {
	var doc yaml.MapSlice
	if yaml.Unmarshal(data, &doc) != nil {
		return nil
	}
	for _, item := range doc {
		key, ok := item.Key.(string)
		if !ok {
			continue
		}
		single, err := yaml.Marshal(yaml.MapSlice{item})
		if err != nil {
			continue
		}
		if yaml.Unmarshal(single, Default()) != nil {
			return &ValidationError{Field: key, Reason: fmt.Sprintf("%v is not a valid value", item.Value)}
		}
	}
	return nil
}

// MNCLength is the digit count of the MNC, needed by PLMN encodings.
func (c *Config) MNCLength() int {
	return len(c.MNC)
}
