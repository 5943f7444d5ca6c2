package pods

import (
	"errors"
	"testing"

	"github.com/JNickson/kube-log-annotator/internal/testutil"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Golden File Tests

func TestMapPod(t *testing.T) {
	testutil.RunGoldenTest(
		t,
		"testdata/mapPod",
		func(input v1.Pod) Pod {
			return mapPod(input)
		},
	)
}

type fakeLister struct {
	pods []*v1.Pod
	err  error
}

func (f fakeLister) List() ([]*v1.Pod, error) {
	return f.pods, f.err
}

func TestPodServiceListPods(t *testing.T) {
	tests := []struct {
		name        string
		lister      fakeLister
		wantNames   []string
		errContains string
	}{
		{
			name: "maps every cached pod",
			lister: fakeLister{pods: []*v1.Pod{
				{ObjectMeta: metav1.ObjectMeta{Name: "api-0", Namespace: "default"}},
				{ObjectMeta: metav1.ObjectMeta{Name: "api-1", Namespace: "default"}},
			}},
			wantNames: []string{"api-0", "api-1"},
		},
		{
			name:      "empty cache",
			lister:    fakeLister{},
			wantNames: []string{},
		},
		{
			name:        "lister error",
			lister:      fakeLister{err: errors.New("boom")},
			errContains: "failed to list cached pods: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPodService(tt.lister).ListPods()

			if tt.errContains != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.errContains)
				return
			}

			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name)
			}
			require.Equal(t, tt.wantNames, names)
		})
	}
}
