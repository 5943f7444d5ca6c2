package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/JNickson/kube-log-annotator/internal/pods"
)

func PodsHandler(svc pods.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pods, err := svc.ListPods()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pods)
	}
}
