package clients

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewKubeConfig uses an explicit kubeconfig when given, then the in-cluster
// config, then ~/.kube/config.
func NewKubeConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		return loadKubeconfig(kubeconfig)
	}

	cfg, err := rest.InClusterConfig()
	if err == nil {
		slog.Info("Using in-cluster Kubernetes config")
		return cfg, nil
	}

	slog.Warn("In-cluster config failed, falling back to kubeconfig",
		"error", err,
		"host", os.Getenv("KUBERNETES_SERVICE_HOST"),
		"port", os.Getenv("KUBERNETES_SERVICE_PORT"),
	)

	home, _ := os.UserHomeDir()
	return loadKubeconfig(filepath.Join(home, ".kube", "config"))
}

func loadKubeconfig(path string) (*rest.Config, error) {
	cfg, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	slog.Info("Using local kubeconfig", "path", path)
	return cfg, nil
}

func NewKubeClient(cfg *rest.Config) (*kubernetes.Clientset, error) {
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kube client: %w", err)
	}

	slog.Info("Kubernetes client initialised")
	return client, nil
}
