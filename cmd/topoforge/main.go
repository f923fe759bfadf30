// Command topoforge compiles a topology file into device configuration
// documents on disk.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dd0wney/topoforge/pkg/compile"
	"github.com/dd0wney/topoforge/pkg/export"
	"github.com/dd0wney/topoforge/pkg/topology"
)

func main() {
	in := flag.String("in", "", "Topology file (.json, .yaml, or .yml)")
	out := flag.String("out", ".", "Output directory for generated documents")
	dev := flag.Bool("dev", true, "Use development logging (console output)")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: topoforge -in topology.json [-out dir]")
		os.Exit(2)
	}

	var logger *zap.Logger
	var err error
	if *dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	topo, err := topology.ReadFile(*in)
	if err != nil {
		logger.Fatal("reading topology", zap.Error(err))
	}

	result, err := compile.Run(topo, compile.Options{Logger: logger})
	if err != nil {
		logger.Fatal("compilation failed", zap.Error(err))
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		logger.Fatal("creating output directory", zap.Error(err))
	}

	reports := export.Reports(result.Devices)
	files := map[string]string{
		"config_routers.txt":      reports["routers"],
		"config_switch_cores.txt": reports["switch_cores"],
		"config_switches.txt":     reports["switches"],
		"config_wlan.txt":         reports["wlan"],
		"config_complete.txt":     reports["complete"],
		"address_report.txt":      export.AddressReport(result),
	}
	for name, content := range files {
		path := filepath.Join(*out, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			logger.Fatal("writing output file", zap.String("path", path), zap.Error(err))
		}
	}

	logger.Info("compilation complete",
		zap.String("run_id", result.RunID),
		zap.Int("devices", len(result.Devices)),
		zap.String("out", *out))
}
