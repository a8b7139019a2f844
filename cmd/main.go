package main

import (
	"fmt"
	"os"

	"github.com/elasticchain/scout/cmd/scout"
)

func main() {
	rootCmd := scout.BuildScoutCmd()

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
