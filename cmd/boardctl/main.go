package main

import (
	"fmt"
	"os"

	"github.com/crucial707/board/cmd/boardctl/dbcmd"
	"github.com/crucial707/board/cmd/boardctl/root"
)

func main() {
	dbcmd.Init(root.GetRoot())

	if err := root.GetRoot().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
