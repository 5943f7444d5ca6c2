package store

import (
	"sort"

	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/labels"
	corev1listers "k8s.io/client-go/listers/core/v1"
)

// PodStore is a read-only view of the informer's pod cache.
type PodStore struct {
	lister corev1listers.PodLister
}

func New(lister corev1listers.PodLister) *PodStore {
	return &PodStore{lister: lister}
}

// Get never blocks; a pod the watch has not delivered yet is simply absent.
// The returned pod is shared with the cache and must not be modified.
func (s *PodStore) Get(namespace, name string) (*v1.Pod, bool) {
	pod, err := s.lister.Pods(namespace).Get(name)
	if err != nil || pod == nil {
		return nil, false
	}
	return pod, true
}

// List returns every cached pod ordered by namespace and name.
func (s *PodStore) List() ([]*v1.Pod, error) {
	pods, err := s.lister.List(labels.Everything())
	if err != nil {
		return nil, err
	}

	sort.Slice(pods, func(i, j int) bool {
		if pods[i].Namespace != pods[j].Namespace {
			return pods[i].Namespace < pods[j].Namespace
		}
		return pods[i].Name < pods[j].Name
	})

	return pods, nil
}

func (s *PodStore) Len() int {
	pods, err := s.lister.List(labels.Everything())
	if err != nil {
		return 0
	}
	return len(pods)
}
