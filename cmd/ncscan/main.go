// Command ncscan prints the catalogs of NetCDF files.
package main

import (
	"os"

	"github.com/spf13/viper"
)

func main() {
	if err := newRoot(viper.New(), os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
