package main

import (
	"github.com/sotvokun/simple-jsonrpc/cmd/jrpc/cmd"
)

func main() {
	cmd.Execute()
}
