package workload

import (
	"fmt"
	"maps"

	"gopkg.in/yaml.v2"
)

type layerSpec struct {
	Summary  string                 `yaml:"summary,omitempty"`
	Services map[string]serviceSpec `yaml:"services"`
}

type serviceSpec struct {
	Override    string            `yaml:"override"`
	Startup     string            `yaml:"startup"`
	Command     string            `yaml:"command"`
	Environment map[string]string `yaml:"environment,omitempty"`
}

// cuServiceSpec is the service definition for the nr-softmodem process.
func cuServiceSpec(configFilePath string) serviceSpec {
	return serviceSpec{
		Override: "replace",
		Startup:  "enabled",
		Command:  fmt.Sprintf("/opt/oai-gnb/bin/nr-softmodem -O %s --sa", configFilePath),
		Environment: map[string]string{
			"OAI_GDBSTACKS": "1",
			"TZ":            "UTC",
		},
	}
}

// layerData marshals the layer holding the given service.
func layerData(service string, spec serviceSpec) ([]byte, error) {
	data, err := yaml.Marshal(layerSpec{
		Summary:  "oai-ran-cu services",
		Services: map[string]serviceSpec{service: spec},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal service layer: %w", err)
	}
	return data, nil
}

// planHasService reports whether the combined plan already carries the
// desired service definition. A plan that cannot be parsed counts as not
// carrying it; re-adding the layer is idempotent.
func planHasService(plan []byte, service string, desired serviceSpec) bool {
	var doc layerSpec
	if err := yaml.Unmarshal(plan, &doc); err != nil {
		return false
	}
	got, ok := doc.Services[service]
	if !ok {
		return false
	}
	return got.Override == desired.Override &&
		got.Startup == desired.Startup &&
		got.Command == desired.Command &&
		maps.Equal(got.Environment, desired.Environment)
}
