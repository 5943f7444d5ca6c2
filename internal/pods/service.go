package pods

import (
	"fmt"

	"github.com/JNickson/kube-log-annotator/internal/utils"
	v1 "k8s.io/api/core/v1"
)

type Service interface {
	ListPods() ([]Pod, error)
}

// PodLister is satisfied by store.PodStore.
type PodLister interface {
	List() ([]*v1.Pod, error)
}

type PodService struct {
	pods PodLister
}

func NewPodService(pods PodLister) *PodService {
	return &PodService{pods: pods}
}

func (s *PodService) ListPods() ([]Pod, error) {
	list, err := s.pods.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list cached pods: %w", err)
	}

	out := make([]Pod, 0, len(list))
	for _, p := range list {
		out = append(out, mapPod(*p))
	}

	return out, nil
}

func mapPod(p v1.Pod) Pod {
	var (
		ready    = true
		restarts int32
		owner    string
		ips      []string
	)

	if len(p.Status.ContainerStatuses) == 0 {
		ready = false
	}

	statuses := make(map[string]v1.ContainerStatus, len(p.Status.ContainerStatuses))
	for _, cs := range p.Status.ContainerStatuses {
		if _, seen := statuses[cs.Name]; !seen {
			statuses[cs.Name] = cs
		}

		restarts += cs.RestartCount

		if !cs.Ready {
			ready = false
		}
	}

	containers := make([]Container, 0, len(p.Spec.Containers))
	for _, c := range p.Spec.Containers {
		cs := statuses[c.Name]
		containers = append(containers, Container{
			Name:  c.Name,
			Image: c.Image,
			ID:    cs.ContainerID,
			Ready: cs.Ready,
		})
	}

	if len(p.OwnerReferences) > 0 {
		owner = p.OwnerReferences[0].Kind + "/" + p.OwnerReferences[0].Name
	}

	for _, ip := range p.Status.PodIPs {
		if ip.IP != "" {
			ips = append(ips, ip.IP)
		}
	}

	return Pod{
		Name:       p.Name,
		Namespace:  p.Namespace,
		Node:       p.Spec.NodeName,
		Owner:      owner,
		Phase:      string(p.Status.Phase),
		Ready:      ready,
		Restarts:   restarts,
		Age:        utils.AgeSince(p.CreationTimestamp.Time),
		IPs:        ips,
		Containers: containers,
	}
}
