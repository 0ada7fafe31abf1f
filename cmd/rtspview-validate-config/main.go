// Command rtspview-validate-config checks one or more rtspview config files
// and prints the resolved configuration of each.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/SnowmanTackler/RtspLibrary/lib/config"
	rlog "github.com/SnowmanTackler/RtspLibrary/lib/log"
)

func main() {
	slog.SetDefault(slog.New(rlog.NewWriterHandler(os.Stderr, true, nil)))

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <config file>...\n", os.Args[0])
		os.Exit(2)
	}

	failed := 0
	for _, path := range os.Args[1:] {
		cfg, err := config.Parse(path)
		if err != nil {
			slog.Error(fmt.Sprintf("%s is invalid: %s", path, err))
			failed++
			continue
		}
		fmt.Printf("# %s\n%s\n", path, cfg)
	}

	if failed > 0 {
		os.Exit(1)
	}
	slog.Info(fmt.Sprintf("%d config(s) valid", len(os.Args)-1))
}
