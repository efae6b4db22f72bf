// Package agentconfig carries the deployment-level settings of the agent
// process, read from the environment at startup. The CU options themselves
// live in the mounted options file and are handled by cuconfig.
package agentconfig

import (
	"fmt"
	"path"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "cu_agent"

// Config is the process configuration. The defaults match the standard pod
// layout; only the namespace has to be injected.
type Config struct {
	Namespace string `envconfig:"NAMESPACE" required:"true"`
	AppName   string `envconfig:"APP_NAME" default:"oai-ran-cu"`

	ConfigPath   string `envconfig:"CONFIG_PATH" default:"/etc/cu-agent/config.yaml"`
	StatusPath   string `envconfig:"STATUS_PATH" default:"/var/run/cu-agent/status.json"`
	PebbleSocket string `envconfig:"PEBBLE_SOCKET" default:"/var/lib/pebble/default/.pebble.socket"`

	ConfigMount    string `envconfig:"CONFIG_MOUNT" default:"/tmp/conf"`
	ConfigFileName string `envconfig:"CONFIG_FILE_NAME" default:"cu.conf"`

	CoreConfigMap        string `envconfig:"CORE_CONFIGMAP" default:"fiveg-n2"`
	F1ConfigMap          string `envconfig:"F1_CONFIGMAP" default:"fiveg-f1"`
	F1RequirerConfigMap  string `envconfig:"F1_REQUIRER_CONFIGMAP" default:"fiveg-f1-du"`
	GNBIdentityConfigMap string `envconfig:"GNB_IDENTITY_CONFIGMAP" default:"fiveg-gnb-identity"`

	ResyncPeriod time.Duration `envconfig:"RESYNC_PERIOD" default:"1m"`
	RetryPeriod  time.Duration `envconfig:"RETRY_PERIOD" default:"10s"`
}

// Load reads the configuration from CU_AGENT_* environment variables.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

// GNBName is the RAN-facing identity of this CU.
func (c *Config) GNBName() string {
	return fmt.Sprintf("%s-%s-cu", c.Namespace, c.AppName)
}

// WorkloadConfigPath is the rendered file location inside the container.
func (c *Config) WorkloadConfigPath() string {
	return path.Join(c.ConfigMount, c.ConfigFileName)
}

// RelationConfigMaps lists every ConfigMap carrying relation payloads.
func (c *Config) RelationConfigMaps() []string {
	return []string{c.CoreConfigMap, c.F1ConfigMap, c.F1RequirerConfigMap, c.GNBIdentityConfigMap}
}

// ServiceName is the application Service the exposed ports live on.
func (c *Config) ServiceName() string {
	return c.AppName
}
