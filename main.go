package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/AnyUserName/wallgen/cmd"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		cmd.Root(),
		fang.WithVersion(cmd.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
