package cuconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReportsFirstViolatedField(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "unknown cni type",
			mutate:    func(c *Config) { c.CNIType = "ipvlan" },
			wantField: "cni-type",
		},
		{
			name:      "f1 ip not cidr",
			mutate:    func(c *Config) { c.F1IPAddress = "192.168.254.7" },
			wantField: "f1-ip-address",
		},
		{
			name:      "f1 ip garbage",
			mutate:    func(c *Config) { c.F1IPAddress = "not-an-ip" },
			wantField: "f1-ip-address",
		},
		{
			name:      "n3 ip not cidr",
			mutate:    func(c *Config) { c.N3IPAddress = "251.6" },
			wantField: "n3-ip-address",
		},
		{
			name:      "n3 gateway not an ip",
			mutate:    func(c *Config) { c.N3GatewayIP = "192.168.251.0/24" },
			wantField: "n3-gateway-ip",
		},
		{
			name:      "upf subnet not cidr",
			mutate:    func(c *Config) { c.UPFSubnet = "192.168.252.0" },
			wantField: "upf-subnet",
		},
		{
			name:      "f1 port zero",
			mutate:    func(c *Config) { c.F1Port = 0 },
			wantField: "f1-port",
		},
		{
			name:      "f1 port above 65535",
			mutate:    func(c *Config) { c.F1Port = 70000 },
			wantField: "f1-port",
		},
		{
			name:      "mcc too short",
			mutate:    func(c *Config) { c.MCC = "01" },
			wantField: "mcc",
		},
		{
			name:      "mcc not digits",
			mutate:    func(c *Config) { c.MCC = "0a1" },
			wantField: "mcc",
		},
		{
			name:      "mnc single digit",
			mutate:    func(c *Config) { c.MNC = "1" },
			wantField: "mnc",
		},
		{
			name:      "mnc four digits",
			mutate:    func(c *Config) { c.MNC = "0123" },
			wantField: "mnc",
		},
		{
			name:      "sst above 255",
			mutate:    func(c *Config) { c.SST = 300 },
			wantField: "sst",
		},
		{
			name:      "sst negative",
			mutate:    func(c *Config) { c.SST = -1 },
			wantField: "sst",
		},
		{
			name:      "tac above 24 bits",
			mutate:    func(c *Config) { c.TAC = 1 << 24 },
			wantField: "tac",
		},
		{
			name:      "tac negative",
			mutate:    func(c *Config) { c.TAC = -1 },
			wantField: "tac",
		},
		{
			name:      "empty f1 interface name",
			mutate:    func(c *Config) { c.F1InterfaceName = "" },
			wantField: "f1-interface-name",
		},
		{
			name:      "empty n3 interface name",
			mutate:    func(c *Config) { c.N3InterfaceName = "" },
			wantField: "n3-interface-name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidateReportsEarliestCheckWhenSeveralFail(t *testing.T) {
	cfg := Default()
	cfg.MNC = "1"
	cfg.CNIType = "ipvlan"
	err := cfg.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "cni-type", verr.Field)
}

func TestValidateAcceptsAllCNITypes(t *testing.T) {
	for _, cni := range []CNIType{CNIBridge, CNIMacvlan, CNIHostDevice} {
		cfg := Default()
		cfg.CNIType = cni
		assert.NoError(t, cfg.Validate(), "cni-type %s", cni)
	}
}

func TestValidationErrorMessageNamesField(t *testing.T) {
	cfg := Default()
	cfg.MNC = "1"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mnc")
}
