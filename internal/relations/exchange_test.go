package relations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

func newExchange(t *testing.T, objs ...client.Object) (*ConfigMapExchange, client.Client, *int) {
	t.Helper()
	scheme := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(scheme))
	writes := new(int)
	cl := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(objs...).
		WithInterceptorFuncs(interceptor.Funcs{
			Create: func(ctx context.Context, c client.WithWatch, obj client.Object, opts ...client.CreateOption) error {
				*writes++
				return c.Create(ctx, obj, opts...)
			},
			Update: func(ctx context.Context, c client.WithWatch, obj client.Object, opts ...client.UpdateOption) error {
				*writes++
				return c.Update(ctx, obj, opts...)
			},
		}).
		Build()
	ex := &ConfigMapExchange{
		Client:          cl,
		Namespace:       "ran",
		CoreName:        "fiveg-n2",
		F1Name:          "fiveg-f1",
		F1RequirerName:  "fiveg-f1-du",
		GNBIdentityName: "fiveg-gnb-identity",
		Log:             log.Log,
	}
	return ex, cl, writes
}

func configMap(name string, data map[string]string) *corev1.ConfigMap {
	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "ran"},
		Data:       data,
	}
}

func TestCoreNetworkDataMissingConfigMap(t *testing.T) {
	ex, _, _ := newExchange(t)
	data, err := ex.CoreNetworkData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestCoreNetworkDataReadsPayload(t *testing.T) {
	ex, _, _ := newExchange(t, configMap("fiveg-n2", map[string]string{"amf_ip_address": "1.2.3.4"}))
	data, err := ex.CoreNetworkData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", data["amf_ip_address"])
}

func TestF1RequirerDataReadsDUConfigMap(t *testing.T) {
	ex, _, _ := newExchange(t, configMap("fiveg-f1-du", map[string]string{"f1_port": "2154"}))
	data, err := ex.F1RequirerData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2154", data["f1_port"])
}

func TestPublishF1CreatesConfigMap(t *testing.T) {
	ex, cl, _ := newExchange(t)
	wrote, err := ex.PublishF1(context.Background(), F1Data{IPAddress: "192.168.254.7", Port: 2152})
	require.NoError(t, err)
	assert.True(t, wrote)

	cm := &corev1.ConfigMap{}
	require.NoError(t, cl.Get(context.Background(), client.ObjectKey{Namespace: "ran", Name: "fiveg-f1"}, cm))
	assert.Equal(t, map[string]string{
		"f1_ip_address": "192.168.254.7",
		"f1_port":       "2152",
	}, cm.Data)
	assert.Equal(t, "cu-agent", cm.Labels["app.kubernetes.io/managed-by"])
}

func TestPublishF1SkipsIdenticalPayload(t *testing.T) {
	ex, _, writes := newExchange(t)
	data := F1Data{IPAddress: "192.168.254.7", Port: 2152}

	wrote, err := ex.PublishF1(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = ex.PublishF1(context.Background(), data)
	require.NoError(t, err)
	assert.False(t, wrote)

	assert.Equal(t, 1, *writes)
}

func TestPublishF1UpdatesChangedPayload(t *testing.T) {
	ex, cl, writes := newExchange(t)
	_, err := ex.PublishF1(context.Background(), F1Data{IPAddress: "192.168.254.7", Port: 2152})
	require.NoError(t, err)
	wrote, err := ex.PublishF1(context.Background(), F1Data{IPAddress: "192.168.254.8", Port: 2152})
	require.NoError(t, err)
	assert.True(t, wrote)

	assert.Equal(t, 2, *writes)
	cm := &corev1.ConfigMap{}
	require.NoError(t, cl.Get(context.Background(), client.ObjectKey{Namespace: "ran", Name: "fiveg-f1"}, cm))
	assert.Equal(t, "192.168.254.8", cm.Data["f1_ip_address"])
}

func TestPublishGNBIdentity(t *testing.T) {
	ex, cl, _ := newExchange(t)
	wrote, err := ex.PublishGNBIdentity(context.Background(), GNBIdentity{Name: "ran-cu", TAC: 1})
	require.NoError(t, err)
	assert.True(t, wrote)

	cm := &corev1.ConfigMap{}
	require.NoError(t, cl.Get(context.Background(), client.ObjectKey{Namespace: "ran", Name: "fiveg-gnb-identity"}, cm))
	assert.Equal(t, map[string]string{"gnb_name": "ran-cu", "tac": "1"}, cm.Data)
}
