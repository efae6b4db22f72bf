package netattach

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
)

func TestManifestBridgeF1(t *testing.T) {
	atts := Resolve(cuconfig.Default())
	nad, err := Manifest(atts[0], "ran")
	require.NoError(t, err)

	assert.Equal(t, "f1-net", nad.Name)
	assert.Equal(t, "ran", nad.Namespace)
	assert.JSONEq(t, `{
		"cniVersion": "0.3.1",
		"type": "bridge",
		"bridge": "f1-br",
		"ipam": {
			"type": "static",
			"addresses": [{"address": "192.168.254.7/24"}],
			"capabilities": {"mac": true}
		}
	}`, nad.Spec.Config)
}

func TestManifestBridgeN3CarriesUPFRoute(t *testing.T) {
	atts := Resolve(cuconfig.Default())
	nad, err := Manifest(atts[1], "ran")
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"cniVersion": "0.3.1",
		"type": "bridge",
		"bridge": "n3-br",
		"ipam": {
			"type": "static",
			"addresses": [{"address": "192.168.251.6/24"}],
			"capabilities": {"mac": true}
		},
		"routes": [{"dst": "192.168.252.0/24", "gw": "192.168.251.1"}]
	}`, nad.Spec.Config)
}

func TestManifestMacvlan(t *testing.T) {
	cfg := cuconfig.Default()
	cfg.CNIType = cuconfig.CNIMacvlan
	nad, err := Manifest(Resolve(cfg)[0], "ran")
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"cniVersion": "0.3.1",
		"type": "macvlan",
		"master": "f1",
		"ipam": {
			"type": "static",
			"addresses": [{"address": "192.168.254.7/24"}],
			"capabilities": {"mac": true}
		}
	}`, nad.Spec.Config)
}

func TestManifestHostDevice(t *testing.T) {
	cfg := cuconfig.Default()
	cfg.CNIType = cuconfig.CNIHostDevice
	nad, err := Manifest(Resolve(cfg)[0], "ran")
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"cniVersion": "0.3.1",
		"type": "host-device",
		"device": "f1",
		"ipam": {
			"type": "static",
			"addresses": [{"address": "192.168.254.7/24"}],
			"capabilities": {"mac": true}
		}
	}`, nad.Spec.Config)
}

func TestManifestIsByteStable(t *testing.T) {
	a := Resolve(cuconfig.Default())[1]
	first, err := Manifest(a, "ran")
	require.NoError(t, err)
	second, err := Manifest(a, "ran")
	require.NoError(t, err)
	assert.Equal(t, first.Spec.Config, second.Spec.Config)
}

func TestManifestRejectsUnknownCNIType(t *testing.T) {
	_, err := Manifest(Attachment{Name: "f1-net", CNIType: "ipvlan"}, "ran")
	require.Error(t, err)
}
