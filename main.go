package main

import (
	"os"

	"github.com/blacktop/multipost/cmd"
	"github.com/blacktop/multipost/internal/logutil"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logutil.Errorf("%v", err)
		os.Exit(1)
	}
}
