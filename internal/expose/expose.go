// Package expose keeps the application Service publishing the RAN interface
// ports so DU and core peers can reach the CU.
package expose

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/equality"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
)

const (
	// n2Port is the NGAP SCTP port the core expects.
	n2Port = 36412
	// n3Port is the GTP-U port on the N3 interface.
	n3Port = 2152
)

// Ports lists the Service ports the CU exposes. The F1 port follows the
// configured value; N2 and N3 use their conventional ports.
func Ports(cfg *cuconfig.Config) []corev1.ServicePort {
	return []corev1.ServicePort{
		{
			Name:       "f1",
			Protocol:   corev1.ProtocolUDP,
			Port:       int32(cfg.F1Port),
			TargetPort: intstr.FromInt32(int32(cfg.F1Port)),
		},
		{
			Name:       "n2",
			Protocol:   corev1.ProtocolSCTP,
			Port:       n2Port,
			TargetPort: intstr.FromInt32(n2Port),
		},
		{
			Name:       "n3",
			Protocol:   corev1.ProtocolUDP,
			Port:       n3Port,
			TargetPort: intstr.FromInt32(n3Port),
		},
	}
}

// Manager converges the application Service onto the expected port set.
type Manager struct {
	Client client.Client
	// Namespace and ServiceName locate the Service to converge.
	Namespace   string
	ServiceName string
	// AppName selects the workload pods when the Service has to be created.
	AppName string
	Log     logr.Logger
}

// EnsureServicePorts creates the Service when absent and rewrites its ports
// when they drifted from the configured set.
func (m *Manager) EnsureServicePorts(ctx context.Context, cfg *cuconfig.Config) error {
	desired := Ports(cfg)

	var svc corev1.Service
	key := types.NamespacedName{Namespace: m.Namespace, Name: m.ServiceName}
	err := m.Client.Get(ctx, key, &svc)
	switch {
	case apierrors.IsNotFound(err):
		svc = corev1.Service{
			ObjectMeta: metav1.ObjectMeta{
				Name:      m.ServiceName,
				Namespace: m.Namespace,
				Labels:    map[string]string{"app.kubernetes.io/managed-by": "cu-agent"},
			},
			Spec: corev1.ServiceSpec{
				Selector: map[string]string{"app.kubernetes.io/name": m.AppName},
				Ports:    desired,
			},
		}
		if err := m.Client.Create(ctx, &svc); err != nil {
			return fmt.Errorf("create service %s: %w", m.ServiceName, err)
		}
		m.Log.Info("created service", "service", m.ServiceName)
		return nil
	case err != nil:
		return fmt.Errorf("get service %s: %w", m.ServiceName, err)
	}

	if equality.Semantic.DeepEqual(svc.Spec.Ports, desired) {
		return nil
	}
	svc.Spec.Ports = desired
	if err := m.Client.Update(ctx, &svc); err != nil {
		return fmt.Errorf("update service %s: %w", m.ServiceName, err)
	}
	m.Log.Info("updated service ports", "service", m.ServiceName)
	return nil
}
