package main

import (
	"context"
	"os"

	"github.com/yazz0dev/ksb-sw-community-sub002/pkg/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(context.Background(), os.Args, version); err != nil {
		os.Exit(1)
	}
}
