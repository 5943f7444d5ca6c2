package pods

// Pod is the summary of a cached pod served by the API.
type Pod struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Node      string `json:"node"`
	Owner     string `json:"owner,omitempty"`

	Phase    string   `json:"phase"`
	Ready    bool     `json:"ready"`
	Restarts int32    `json:"restarts"`
	Age      string   `json:"age"`
	IPs      []string `json:"ips,omitempty"`

	Containers []Container `json:"containers"`
}

type Container struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	ID    string `json:"id,omitempty"`
	Ready bool   `json:"ready"`
}
