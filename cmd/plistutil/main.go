// plistutil - property list conversion and inspection tool
//
// Usage:
//
//	plistutil convert -f binary|openstep|gnustep|json|yaml [-o out] [file]
//	plistutil lint [files...]
//	plistutil inspect [--dump] file
//
// If no file is given, convert reads from stdin.
package main

import (
	"os"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"
)

const appVersion = "0.1.0"

var log = logger.GetOrCreate("plistutil")

var (
	configFile = cli.StringFlag{
		Name:  "config",
		Usage: "The `filepath` of an optional TOML file holding output defaults.",
	}
	logLevel = cli.StringFlag{
		Name:  "log-level",
		Usage: "The logger `level(s)` in the form *:INFO or plistutil:DEBUG.",
		Value: "*:INFO",
	}
	outputFormat = cli.StringFlag{
		Name:  "format, f",
		Usage: "Output `format`: binary, openstep, gnustep, json or yaml.",
	}
	outputFile = cli.StringFlag{
		Name:  "output, o",
		Usage: "Write to `file` instead of stdout.",
	}
	dumpTrailer = cli.BoolFlag{
		Name:  "dump",
		Usage: "Dump the parsed binary trailer structure.",
	}
)

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "plistutil"
	app.Usage = "Convert, lint and inspect property lists"
	app.Version = appVersion
	app.Flags = []cli.Flag{configFile, logLevel}

	cfg := DefaultConfig()
	app.Before = func(c *cli.Context) error {
		err := logger.SetLogLevel(c.GlobalString(logLevel.Name))
		if err != nil {
			return err
		}

		path := c.GlobalString(configFile.Name)
		if path == "" {
			return nil
		}
		loaded, err := LoadConfig(path)
		if err != nil {
			return err
		}
		*cfg = *loaded
		log.Debug("loaded config", "path", path, "format", cfg.Output.Format)
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:      "convert",
			Usage:     "Convert a property list to another format",
			ArgsUsage: "[file]",
			Flags:     []cli.Flag{outputFormat, outputFile},
			Action: func(c *cli.Context) error {
				return convertAction(c, cfg)
			},
		},
		{
			Name:      "lint",
			Usage:     "Decode each file and report the first error",
			ArgsUsage: "files...",
			Action:    lintAction,
		},
		{
			Name:      "inspect",
			Usage:     "Print format and binary trailer details",
			ArgsUsage: "file",
			Flags:     []cli.Flag{dumpTrailer},
			Action:    inspectAction,
		},
	}
	return app
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		log.Error("plistutil failed", "error", err.Error())
		os.Exit(1)
	}
}
