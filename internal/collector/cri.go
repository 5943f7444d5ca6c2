package collector

import (
	"strings"
	"time"
)

// criLine is one line written by the container runtime:
// <RFC3339Nano timestamp> <stdout|stderr> <P|F> <message>
type criLine struct {
	Timestamp time.Time
	Stream    string
	Partial   bool
	Message   string
}

func parseCRILine(line string) (criLine, bool) {
	parts := strings.SplitN(line, " ", 4)
	if len(parts) < 3 {
		return criLine{}, false
	}

	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return criLine{}, false
	}

	stream := parts[1]
	if stream != "stdout" && stream != "stderr" {
		return criLine{}, false
	}

	// tags may carry extra ':'-separated flags after the first one
	tag, _, _ := strings.Cut(parts[2], ":")
	if tag != "P" && tag != "F" {
		return criLine{}, false
	}

	var msg string
	if len(parts) == 4 {
		msg = parts[3]
	}

	return criLine{
		Timestamp: ts,
		Stream:    stream,
		Partial:   tag == "P",
		Message:   msg,
	}, true
}
