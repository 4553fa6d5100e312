package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/tering/cmd/extract"
	"fjacquet/tering/cmd/geonames"
	"fjacquet/tering/cmd/hundreds"
	"fjacquet/tering/cmd/normalize"
	"fjacquet/tering/cmd/number"
	"fjacquet/tering/cmd/ocr"
	"fjacquet/tering/cmd/partition"
	"fjacquet/tering/cmd/root"
	"fjacquet/tering/cmd/run"
	"fjacquet/tering/cmd/split"
	"fjacquet/tering/cmd/stats"
	"fjacquet/tering/cmd/structure"
	"fjacquet/tering/internal/config"

	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load environment variables silently first (no logging yet)
	_, _ = config.LoadEnv()

	// 2. Set the global level before any logger is created
	logrus.SetLevel(config.LevelFromEnv())

	// 3. Initialize root command and its persistent flags
	root.Init()

	// 4. Add all subcommands
	root.Cmd.AddCommand(normalize.Cmd)
	root.Cmd.AddCommand(split.Cmd)
	root.Cmd.AddCommand(number.Cmd)
	root.Cmd.AddCommand(hundreds.Cmd)
	root.Cmd.AddCommand(partition.Cmd)
	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(run.Cmd)
	root.Cmd.AddCommand(ocr.Cmd)
	root.Cmd.AddCommand(structure.Cmd)
	root.Cmd.AddCommand(geonames.Cmd)
	root.Cmd.AddCommand(stats.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Cmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}
