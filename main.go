package main

import (
	"fmt"
	"os"

	"github.com/JNickson/kube-log-annotator/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
