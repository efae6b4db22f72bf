package workload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/canonical/pebble/client"
	"github.com/go-logr/logr"
)

const defaultWaitTimeout = 30 * time.Second

// Pebble implements Runtime against the container's Pebble socket.
type Pebble struct {
	pc *client.Client

	// Service is the Pebble service name for the CU process.
	Service string
	// ConfigFilePath is the workload configuration file the service reads.
	ConfigFilePath string
	// WaitTimeout bounds how long a start/restart change may take.
	WaitTimeout time.Duration
	Log         logr.Logger
}

var _ Runtime = (*Pebble)(nil)

// NewPebble connects to the Pebble daemon at socket.
func NewPebble(socket, service, configFilePath string, log logr.Logger) (*Pebble, error) {
	pc, err := client.New(&client.Config{Socket: socket})
	if err != nil {
		return nil, fmt.Errorf("create pebble client: %w", err)
	}
	return &Pebble{
		pc:             pc,
		Service:        service,
		ConfigFilePath: configFilePath,
		WaitTimeout:    defaultWaitTimeout,
		Log:            log,
	}, nil
}

func (p *Pebble) Ready(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	_, err := p.pc.SysInfo()
	return err == nil
}

func (p *Pebble) FileExists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	files, err := p.pc.ListFiles(&client.ListFilesOptions{Path: path, Itself: true})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s in container: %w", path, err)
	}
	return len(files) > 0, nil
}

func (p *Pebble) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := p.pc.Pull(&client.PullOptions{Path: path, Target: &buf}); err != nil {
		return nil, fmt.Errorf("pull %s from container: %w", path, err)
	}
	return buf.Bytes(), nil
}

func (p *Pebble) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.pc.Push(&client.PushOptions{
		Source:   bytes.NewReader(content),
		Path:     path,
		MakeDirs: true,
	})
	if err != nil {
		return fmt.Errorf("push %s to container: %w", path, err)
	}
	return nil
}

func (p *Pebble) EnsureService(ctx context.Context, restart bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	desired := cuServiceSpec(p.ConfigFilePath)
	plan, err := p.pc.PlanBytes(nil)
	if err != nil {
		return fmt.Errorf("read pebble plan: %w", err)
	}
	if !planHasService(plan, p.Service, desired) {
		data, err := layerData(p.Service, desired)
		if err != nil {
			return err
		}
		err = p.pc.AddLayer(&client.AddLayerOptions{Combine: true, Label: p.Service, LayerData: data})
		if err != nil {
			return fmt.Errorf("add service layer: %w", err)
		}
		p.Log.Info("added pebble service layer", "service", p.Service)
	}

	if restart {
		changeID, err := p.pc.Restart(&client.ServiceOptions{Names: []string{p.Service}})
		if err != nil {
			return fmt.Errorf("restart service %s: %w", p.Service, err)
		}
		if err := p.waitChange(changeID); err != nil {
			return fmt.Errorf("restart service %s: %w", p.Service, err)
		}
		p.Log.Info("restarted workload service", "service", p.Service)
		return nil
	}

	running, err := p.serviceRunning()
	if err != nil {
		return err
	}
	if !running {
		changeID, err := p.pc.Start(&client.ServiceOptions{Names: []string{p.Service}})
		if err != nil {
			return fmt.Errorf("start service %s: %w", p.Service, err)
		}
		if err := p.waitChange(changeID); err != nil {
			return fmt.Errorf("start service %s: %w", p.Service, err)
		}
		p.Log.Info("started workload service", "service", p.Service)
	}
	return nil
}

func (p *Pebble) Version(ctx context.Context) (string, error) {
	content, err := p.ReadFile(ctx, VersionPath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

func (p *Pebble) serviceRunning() (bool, error) {
	infos, err := p.pc.Services(&client.ServicesOptions{Names: []string{p.Service}})
	if err != nil {
		return false, fmt.Errorf("query service %s: %w", p.Service, err)
	}
	return len(infos) == 1 && infos[0].Current == client.StatusActive, nil
}

func (p *Pebble) waitChange(changeID string) error {
	timeout := p.WaitTimeout
	if timeout == 0 {
		timeout = defaultWaitTimeout
	}
	change, err := p.pc.WaitChange(changeID, &client.WaitChangeOptions{Timeout: timeout})
	if err != nil {
		return err
	}
	if change.Err != "" {
		return errors.New(change.Err)
	}
	return nil
}

func isNotFound(err error) bool {
	var perr *client.Error
	if errors.As(err, &perr) {
		return perr.Kind == "not-found"
	}
	return strings.Contains(err.Error(), "not found")
}
