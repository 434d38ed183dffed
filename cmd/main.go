package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/assignsat/assignsat/cmd/root"
)

func main() {
	defer glog.Flush()

	rootCmd := root.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		glog.Flush()
		os.Exit(1)
	}
}
