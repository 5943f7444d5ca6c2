// Package annotator enriches container log records with metadata of the pod
// that produced them.
package annotator

import (
	"github.com/JNickson/kube-log-annotator/internal/logpath"
	"github.com/JNickson/kube-log-annotator/internal/record"
	v1 "k8s.io/api/core/v1"
)

// PodGetter resolves a pod from a point-in-time cache view.
// Implementations must be safe for concurrent reads and must not block.
type PodGetter interface {
	Get(namespace, name string) (*v1.Pod, bool)
}

// Annotator writes pod metadata into records. It is safe for concurrent use
// as long as each call gets its own record.
type Annotator struct {
	pods   PodGetter
	fields FieldSpec
}

func New(pods PodGetter, fields FieldSpec) *Annotator {
	return &Annotator{
		pods:   pods,
		fields: fields,
	}
}

// Annotate resolves the pod behind file and writes its metadata into rec.
// It returns false, leaving rec untouched, when the path is not a pod log
// path or the pod is not in the cache.
func (a *Annotator) Annotate(rec record.Record, file string) (logpath.Info, bool) {
	info, ok := logpath.Parse(file)
	if !ok {
		return logpath.Info{}, false
	}

	pod, ok := a.pods.Get(info.Namespace, info.PodName)
	if !ok || pod == nil {
		return logpath.Info{}, false
	}

	annotateFromPathInfo(rec, &a.fields, info)
	annotateFromMetadata(rec, &a.fields, &pod.ObjectMeta)

	annotateFromPodSpec(rec, &a.fields, &pod.Spec)
	if c := findContainer(pod.Spec.Containers, info.ContainerName); c != nil {
		annotateFromContainer(rec, &a.fields, c)
	}

	annotateFromPodStatus(rec, &a.fields, &pod.Status)
	if cs := findContainerStatus(pod.Status.ContainerStatuses, info.ContainerName); cs != nil {
		annotateFromContainerStatus(rec, &a.fields, cs)
	}

	return info, true
}

func findContainer(containers []v1.Container, name string) *v1.Container {
	for i := range containers {
		if containers[i].Name == name {
			return &containers[i]
		}
	}
	return nil
}

func findContainerStatus(statuses []v1.ContainerStatus, name string) *v1.ContainerStatus {
	for i := range statuses {
		if statuses[i].Name == name {
			return &statuses[i]
		}
	}
	return nil
}
