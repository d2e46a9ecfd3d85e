package main

import (
	"log"
	"os"
)

func main() {
	logger := log.Default()
	loadEnvFile(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		os.Exit(1)
	}
}
