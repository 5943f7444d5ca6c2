// Package logpath extracts pod identity from kubelet log file paths.
package logpath

import (
	"path"
	"strings"
)

// Info identifies the container that wrote a log file.
type Info struct {
	Namespace     string
	PodName       string
	PodUID        string
	ContainerName string
}

// Parse recognises paths shaped like
// .../<namespace>_<pod_name>_<pod_uid>/<container_name>/<n>.log
// and fails closed on anything else.
func Parse(file string) (Info, bool) {
	dir, name := path.Split(file)
	if !strings.HasSuffix(name, ".log") || name == ".log" {
		return Info{}, false
	}

	dir, container := path.Split(strings.TrimSuffix(dir, "/"))
	if container == "" {
		return Info{}, false
	}

	_, podDir := path.Split(strings.TrimSuffix(dir, "/"))

	// namespace and pod names are DNS labels/subdomains and cannot contain '_'
	parts := strings.Split(podDir, "_")
	if len(parts) != 3 {
		return Info{}, false
	}
	for _, p := range parts {
		if p == "" {
			return Info{}, false
		}
	}

	return Info{
		Namespace:     parts[0],
		PodName:       parts[1],
		PodUID:        parts[2],
		ContainerName: container,
	}, true
}

// Glob is the pattern matching every container log file under root.
func Glob(root string) string {
	return path.Join(root, "*", "*", "*.log")
}
