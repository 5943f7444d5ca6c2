package annotator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JNickson/kube-log-annotator/internal/fieldpath"
)

// FieldSpec maps each pod metadata field to its location in the record.
// A nil slot disables the field.
type FieldSpec struct {
	PodName        *fieldpath.Path
	PodNamespace   *fieldpath.Path
	PodUID         *fieldpath.Path
	PodIP          *fieldpath.Path
	PodIPs         *fieldpath.Path
	PodLabels      *fieldpath.Path
	PodAnnotations *fieldpath.Path
	PodNodeName    *fieldpath.Path
	PodOwner       *fieldpath.Path
	ContainerName  *fieldpath.Path
	ContainerID    *fieldpath.Path
	ContainerImage *fieldpath.Path
}

const defaultRoot = "kubernetes"

// DefaultFieldSpec places every field under the "kubernetes" root,
// e.g. kubernetes.pod_name.
func DefaultFieldSpec() FieldSpec {
	var spec FieldSpec
	for name, slot := range spec.slots() {
		p := fieldpath.New(defaultRoot, name)
		*slot = &p
	}
	return spec
}

func (s *FieldSpec) slots() map[string]**fieldpath.Path {
	return map[string]**fieldpath.Path{
		"pod_name":        &s.PodName,
		"pod_namespace":   &s.PodNamespace,
		"pod_uid":         &s.PodUID,
		"pod_ip":          &s.PodIP,
		"pod_ips":         &s.PodIPs,
		"pod_labels":      &s.PodLabels,
		"pod_annotations": &s.PodAnnotations,
		"pod_node_name":   &s.PodNodeName,
		"pod_owner":       &s.PodOwner,
		"container_name":  &s.ContainerName,
		"container_id":    &s.ContainerID,
		"container_image": &s.ContainerImage,
	}
}

// FieldNames lists the configurable field names in sorted order.
func FieldNames() []string {
	var spec FieldSpec
	names := make([]string, 0, 12)
	for name := range spec.slots() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply overrides slots by field name. An empty value disables the field,
// anything else is parsed as a field path. Unknown names are rejected.
func (s *FieldSpec) Apply(overrides map[string]string) error {
	slots := s.slots()

	var unknown []string
	for name := range overrides {
		if _, ok := slots[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown fields: %s", strings.Join(unknown, ", "))
	}

	for name, raw := range overrides {
		slot := slots[name]
		if raw == "" {
			*slot = nil
			continue
		}

		p, err := fieldpath.Parse(raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		*slot = &p
	}

	return nil
}

// Map renders each destination path by field name; disabled fields map to "".
func (s FieldSpec) Map() map[string]string {
	out := make(map[string]string, 12)
	for name, slot := range s.slots() {
		if *slot == nil {
			out[name] = ""
			continue
		}
		out[name] = (*slot).String()
	}
	return out
}
