package main

import (
	"flag"
	"os"

	nadv1 "github.com/k8snetworkplumbingwg/network-attachment-definition-client/pkg/apis/k8s.cni.cncf.io/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/thc1006/oai-ran-cu-agent/controllers"
	"github.com/thc1006/oai-ran-cu-agent/internal/agentconfig"
	"github.com/thc1006/oai-ran-cu-agent/internal/expose"
	"github.com/thc1006/oai-ran-cu-agent/internal/netattach"
	"github.com/thc1006/oai-ran-cu-agent/internal/reconciler"
	"github.com/thc1006/oai-ran-cu-agent/internal/relations"
	"github.com/thc1006/oai-ran-cu-agent/internal/status"
	"github.com/thc1006/oai-ran-cu-agent/internal/workload"
)

// cuServiceName is the Pebble service running the CU process.
const cuServiceName = "cu"

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(nadv1.AddToScheme(scheme))
}

func main() {
	var metricsAddr string
	var probeAddr string
	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metrics endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")

	opts := zap.Options{}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	cfg, err := agentconfig.Load()
	if err != nil {
		setupLog.Error(err, "unable to load agent configuration")
		os.Exit(1)
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		// The agent manages exactly one CU; everything it watches lives in
		// its own namespace.
		Cache: cache.Options{
			DefaultNamespaces: map[string]cache.Config{cfg.Namespace: {}},
		},
		Metrics:                metricsserver.Options{BindAddress: metricsAddr},
		HealthProbeBindAddress: probeAddr,
	})
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	watcher, err := controllers.NewConfigWatcher(cfg.ConfigPath, ctrl.Log.WithName("configwatch"))
	if err != nil {
		setupLog.Error(err, "unable to watch options file", "path", cfg.ConfigPath)
		os.Exit(1)
	}
	if err := mgr.Add(watcher); err != nil {
		setupLog.Error(err, "unable to register options watcher")
		os.Exit(1)
	}

	pebble, err := workload.NewPebble(cfg.PebbleSocket, cuServiceName, cfg.WorkloadConfigPath(), ctrl.Log.WithName("workload"))
	if err != nil {
		setupLog.Error(err, "unable to connect pebble client", "socket", cfg.PebbleSocket)
		os.Exit(1)
	}

	engine := &reconciler.Engine{
		Workload: pebble,
		Networks: &netattach.KubeProvider{
			Client:    mgr.GetClient(),
			Namespace: cfg.Namespace,
			Log:       ctrl.Log.WithName("netattach"),
		},
		Relations: &relations.ConfigMapExchange{
			Client:          mgr.GetClient(),
			Namespace:       cfg.Namespace,
			CoreName:        cfg.CoreConfigMap,
			F1Name:          cfg.F1ConfigMap,
			F1RequirerName:  cfg.F1RequirerConfigMap,
			GNBIdentityName: cfg.GNBIdentityConfigMap,
			Log:             ctrl.Log.WithName("relations"),
		},
		Log:            ctrl.Log.WithName("engine"),
		GNBName:        cfg.GNBName(),
		ConfigMount:    cfg.ConfigMount,
		ConfigFilePath: cfg.WorkloadConfigPath(),
	}

	r := &controllers.CUAgentReconciler{
		Engine: engine,
		Expose: &expose.Manager{
			Client:      mgr.GetClient(),
			Namespace:   cfg.Namespace,
			ServiceName: cfg.ServiceName(),
			AppName:     cfg.AppName,
			Log:         ctrl.Log.WithName("expose"),
		},
		StatusFile:         status.NewWriter(cfg.StatusPath),
		Log:                ctrl.Log.WithName("controller"),
		ConfigPath:         cfg.ConfigPath,
		Namespace:          cfg.Namespace,
		RelationConfigMaps: cfg.RelationConfigMaps(),
		ConfigEvents:       watcher.Events(),
		ResyncPeriod:       cfg.ResyncPeriod,
		RetryPeriod:        cfg.RetryPeriod,
	}
	if err := r.SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "CUAgent")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	setupLog.Info("starting manager", "namespace", cfg.Namespace, "gnb", cfg.GNBName())
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}
