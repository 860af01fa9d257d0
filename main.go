package main

import (
	"os"

	"github.com/jandubois/check-zpools/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
