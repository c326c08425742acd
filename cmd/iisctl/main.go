package main

import (
	"os"

	"iisctl/pkg/logging"
)

func main() {
	err := Execute()
	logging.CloseLogger()
	if err != nil {
		os.Exit(1)
	}
}
