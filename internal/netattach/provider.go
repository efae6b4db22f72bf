package netattach

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	nadv1 "github.com/k8snetworkplumbingwg/network-attachment-definition-client/pkg/apis/k8s.cni.cncf.io/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Provider is the boundary to whatever realizes attachments in the cluster.
type Provider interface {
	// Ensure creates the missing attachment resources and updates drifted
	// ones. Matching resources are left untouched; nothing is ever deleted.
	Ensure(ctx context.Context, attachments []Attachment) error
	// Missing returns the names of the attachments whose resources are not
	// yet observable.
	Missing(ctx context.Context, attachments []Attachment) ([]string, error)
}

// KubeProvider realizes attachments as NetworkAttachmentDefinition resources
// in the agent's namespace.
type KubeProvider struct {
	Client    client.Client
	Namespace string
	Log       logr.Logger
}

var _ Provider = (*KubeProvider)(nil)

func (p *KubeProvider) Ensure(ctx context.Context, attachments []Attachment) error {
	for _, a := range attachments {
		desired, err := Manifest(a, p.Namespace)
		if err != nil {
			return err
		}
		existing := &nadv1.NetworkAttachmentDefinition{}
		err = p.Client.Get(ctx, client.ObjectKeyFromObject(desired), existing)
		switch {
		case apierrors.IsNotFound(err):
			if err := p.Client.Create(ctx, desired); err != nil {
				return fmt.Errorf("create network attachment definition %s: %w", a.Name, err)
			}
			p.Log.Info("created network attachment definition", "name", a.Name)
		case err != nil:
			return fmt.Errorf("get network attachment definition %s: %w", a.Name, err)
		case existing.Spec.Config != desired.Spec.Config:
			existing.Spec.Config = desired.Spec.Config
			if err := p.Client.Update(ctx, existing); err != nil {
				return fmt.Errorf("update network attachment definition %s: %w", a.Name, err)
			}
			p.Log.Info("updated network attachment definition", "name", a.Name)
		}
	}
	return nil
}

func (p *KubeProvider) Missing(ctx context.Context, attachments []Attachment) ([]string, error) {
	var missing []string
	for _, a := range attachments {
		nad := &nadv1.NetworkAttachmentDefinition{}
		err := p.Client.Get(ctx, client.ObjectKey{Namespace: p.Namespace, Name: a.Name}, nad)
		switch {
		case apierrors.IsNotFound(err):
			missing = append(missing, a.Name)
		case err != nil:
			return nil, fmt.Errorf("get network attachment definition %s: %w", a.Name, err)
		}
	}
	return missing, nil
}
