package annotator

import (
	"github.com/JNickson/kube-log-annotator/internal/fieldpath"
	"github.com/JNickson/kube-log-annotator/internal/logpath"
	"github.com/JNickson/kube-log-annotator/internal/record"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// project writes value at path when the field is enabled and the value present.
func project(rec record.Record, path *fieldpath.Path, value string) {
	if path == nil || value == "" {
		return
	}
	rec.Insert(*path, value)
}

// projectMap writes every entry of m as a child of prefix, one segment per key.
func projectMap(rec record.Record, prefix *fieldpath.Path, m map[string]string) {
	if prefix == nil || m == nil {
		return
	}
	for key, val := range m {
		rec.Insert(prefix.Child(key), val)
	}
}

func annotateFromPathInfo(rec record.Record, fields *FieldSpec, info logpath.Info) {
	project(rec, fields.ContainerName, info.ContainerName)
}

func annotateFromMetadata(rec record.Record, fields *FieldSpec, meta *metav1.ObjectMeta) {
	project(rec, fields.PodName, meta.Name)
	project(rec, fields.PodNamespace, meta.Namespace)
	project(rec, fields.PodUID, string(meta.UID))

	// only the first owner is reported
	if len(meta.OwnerReferences) > 0 {
		owner := meta.OwnerReferences[0]
		project(rec, fields.PodOwner, owner.Kind+"/"+owner.Name)
	}

	projectMap(rec, fields.PodLabels, meta.Labels)
	projectMap(rec, fields.PodAnnotations, meta.Annotations)
}

func annotateFromPodSpec(rec record.Record, fields *FieldSpec, spec *v1.PodSpec) {
	project(rec, fields.PodNodeName, spec.NodeName)
}

func annotateFromPodStatus(rec record.Record, fields *FieldSpec, status *v1.PodStatus) {
	project(rec, fields.PodIP, status.PodIP)

	// unlike pod_ip, a present list is written even when no address survives
	if fields.PodIPs != nil && status.PodIPs != nil {
		ips := make([]string, 0, len(status.PodIPs))
		for _, ip := range status.PodIPs {
			if ip.IP != "" {
				ips = append(ips, ip.IP)
			}
		}
		rec.Insert(*fields.PodIPs, ips)
	}
}

func annotateFromContainer(rec record.Record, fields *FieldSpec, container *v1.Container) {
	project(rec, fields.ContainerImage, container.Image)
}

func annotateFromContainerStatus(rec record.Record, fields *FieldSpec, status *v1.ContainerStatus) {
	project(rec, fields.ContainerID, status.ContainerID)
}
