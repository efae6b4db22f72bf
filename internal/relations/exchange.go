package relations

import (
	"context"
	"fmt"
	"maps"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Exchange is the transport boundary for relation payloads. Reads return an
// empty map while the peer side has not been set up yet. Publishes report
// whether a write happened; an unchanged payload is skipped.
type Exchange interface {
	CoreNetworkData(ctx context.Context) (map[string]string, error)
	F1RequirerData(ctx context.Context) (map[string]string, error)
	PublishF1(ctx context.Context, data F1Data) (bool, error)
	PublishGNBIdentity(ctx context.Context, id GNBIdentity) (bool, error)
}

// ConfigMapExchange carries relation payloads over namespaced ConfigMaps:
// peers own the inbound maps, the agent owns the outbound ones. Publishing
// skips the write when the stored payload already matches.
type ConfigMapExchange struct {
	Client          client.Client
	Namespace       string
	CoreName        string
	F1Name          string
	F1RequirerName  string
	GNBIdentityName string
	Log             logr.Logger
}

var _ Exchange = (*ConfigMapExchange)(nil)

func (e *ConfigMapExchange) CoreNetworkData(ctx context.Context) (map[string]string, error) {
	return e.read(ctx, e.CoreName)
}

func (e *ConfigMapExchange) F1RequirerData(ctx context.Context) (map[string]string, error) {
	return e.read(ctx, e.F1RequirerName)
}

func (e *ConfigMapExchange) PublishF1(ctx context.Context, data F1Data) (bool, error) {
	return e.publish(ctx, e.F1Name, data.Payload())
}

func (e *ConfigMapExchange) PublishGNBIdentity(ctx context.Context, id GNBIdentity) (bool, error) {
	return e.publish(ctx, e.GNBIdentityName, id.Payload())
}

func (e *ConfigMapExchange) read(ctx context.Context, name string) (map[string]string, error) {
	cm := &corev1.ConfigMap{}
	err := e.Client.Get(ctx, client.ObjectKey{Namespace: e.Namespace, Name: name}, cm)
	if apierrors.IsNotFound(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read relation configmap %s: %w", name, err)
	}
	return cm.Data, nil
}

func (e *ConfigMapExchange) publish(ctx context.Context, name string, payload map[string]string) (bool, error) {
	existing := &corev1.ConfigMap{}
	err := e.Client.Get(ctx, client.ObjectKey{Namespace: e.Namespace, Name: name}, existing)
	switch {
	case apierrors.IsNotFound(err):
		cm := &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Name:      name,
				Namespace: e.Namespace,
				Labels:    map[string]string{"app.kubernetes.io/managed-by": "cu-agent"},
			},
			Data: payload,
		}
		if err := e.Client.Create(ctx, cm); err != nil {
			return false, fmt.Errorf("publish relation configmap %s: %w", name, err)
		}
		e.Log.Info("published relation data", "configmap", name)
		return true, nil
	case err != nil:
		return false, fmt.Errorf("read relation configmap %s: %w", name, err)
	case !maps.Equal(existing.Data, payload):
		existing.Data = payload
		if err := e.Client.Update(ctx, existing); err != nil {
			return false, fmt.Errorf("update relation configmap %s: %w", name, err)
		}
		e.Log.Info("updated relation data", "configmap", name)
		return true, nil
	}
	return false, nil
}
