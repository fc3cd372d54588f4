package main

import (
	"github.com/0xPolygon/wasm-vm/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}
