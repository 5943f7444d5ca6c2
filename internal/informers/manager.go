package informers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/client-go/informers"
	"k8s.io/client-go/kubernetes"
	corev1listers "k8s.io/client-go/listers/core/v1"
)

const resyncPeriod = 10 * time.Minute

type Manager struct {
	factory informers.SharedInformerFactory
	synced  atomic.Bool
}

// NewManager watches pods. When nodeName is set only pods scheduled on that
// node are cached.
func NewManager(client kubernetes.Interface, nodeName string) *Manager {
	var opts []informers.SharedInformerOption
	if nodeName != "" {
		selector := fields.OneTermEqualSelector("spec.nodeName", nodeName).String()
		opts = append(opts, informers.WithTweakListOptions(func(o *metav1.ListOptions) {
			o.FieldSelector = selector
		}))
	}

	return &Manager{
		factory: informers.NewSharedInformerFactoryWithOptions(client, resyncPeriod, opts...),
	}
}

// PodLister registers the pod informer; call it before Start.
func (m *Manager) PodLister() corev1listers.PodLister {
	return m.factory.Core().V1().Pods().Lister()
}

// Start runs the informers and returns once their caches are synced or ctx
// is done.
func (m *Manager) Start(ctx context.Context) bool {
	slog.Info("starting informers")

	m.factory.Start(ctx.Done())

	for typ, ok := range m.factory.WaitForCacheSync(ctx.Done()) {
		if !ok {
			slog.Warn("informer cache did not sync", "type", typ.String())
			return false
		}
	}

	m.synced.Store(true)
	slog.Info("informers synced")
	return true
}

func (m *Manager) Synced() bool {
	return m.synced.Load()
}

func (m *Manager) Shutdown() {
	m.factory.Shutdown()
}
