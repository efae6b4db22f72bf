package netattach

import (
	"context"
	"testing"

	nadv1 "github.com/k8snetworkplumbingwg/network-attachment-definition-client/pkg/apis/k8s.cni.cncf.io/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/thc1006/oai-ran-cu-agent/internal/cuconfig"
)

func newScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, nadv1.AddToScheme(scheme))
	return scheme
}

func newProvider(cl client.Client) *KubeProvider {
	return &KubeProvider{Client: cl, Namespace: "ran", Log: log.Log}
}

func TestEnsureCreatesMissingDefinitions(t *testing.T) {
	cl := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	p := newProvider(cl)
	atts := Resolve(cuconfig.Default())

	require.NoError(t, p.Ensure(context.Background(), atts))

	for _, a := range atts {
		nad := &nadv1.NetworkAttachmentDefinition{}
		require.NoError(t, cl.Get(context.Background(), client.ObjectKey{Namespace: "ran", Name: a.Name}, nad))
		assert.NotEmpty(t, nad.Spec.Config)
	}
}

func TestEnsureLeavesMatchingDefinitionsUntouched(t *testing.T) {
	var updates int
	cl := fake.NewClientBuilder().
		WithScheme(newScheme(t)).
		WithInterceptorFuncs(interceptor.Funcs{
			Update: func(ctx context.Context, c client.WithWatch, obj client.Object, opts ...client.UpdateOption) error {
				updates++
				return c.Update(ctx, obj, opts...)
			},
		}).
		Build()
	p := newProvider(cl)
	atts := Resolve(cuconfig.Default())

	require.NoError(t, p.Ensure(context.Background(), atts))
	require.NoError(t, p.Ensure(context.Background(), atts))

	assert.Zero(t, updates)
}

func TestEnsureUpdatesDriftedDefinitions(t *testing.T) {
	scheme := newScheme(t)
	drifted := &nadv1.NetworkAttachmentDefinition{}
	drifted.Name = "f1-net"
	drifted.Namespace = "ran"
	drifted.Spec.Config = `{"cniVersion":"0.3.1","type":"bridge","bridge":"stale-br"}`
	cl := fake.NewClientBuilder().WithScheme(scheme).WithObjects(drifted).Build()
	p := newProvider(cl)
	atts := Resolve(cuconfig.Default())

	require.NoError(t, p.Ensure(context.Background(), atts))

	nad := &nadv1.NetworkAttachmentDefinition{}
	require.NoError(t, cl.Get(context.Background(), client.ObjectKey{Namespace: "ran", Name: "f1-net"}, nad))
	assert.Contains(t, nad.Spec.Config, "f1-br")
}

func TestMissingReportsUnrealizedAttachments(t *testing.T) {
	scheme := newScheme(t)
	existing := &nadv1.NetworkAttachmentDefinition{}
	existing.Name = "f1-net"
	existing.Namespace = "ran"
	cl := fake.NewClientBuilder().WithScheme(scheme).WithObjects(existing).Build()
	p := newProvider(cl)
	atts := Resolve(cuconfig.Default())

	missing, err := p.Missing(context.Background(), atts)
	require.NoError(t, err)
	assert.Equal(t, []string{"n3-net"}, missing)
}

func TestMissingEmptyWhenAllRealized(t *testing.T) {
	cl := fake.NewClientBuilder().WithScheme(newScheme(t)).Build()
	p := newProvider(cl)
	atts := Resolve(cuconfig.Default())

	require.NoError(t, p.Ensure(context.Background(), atts))
	missing, err := p.Missing(context.Background(), atts)
	require.NoError(t, err)
	assert.Empty(t, missing)
}
