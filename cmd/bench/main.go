// bench - property list size comparison runner
//
// For each input document, compares the encoded size of:
//   - binary bplist00
//   - OpenStep text (strict dialect)
//   - GNUstep text (typed dialect)
//
// Output: CSV and markdown summary
package main

import (
	"os"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"
)

var log = logger.GetOrCreate("bench")

var (
	csvPath = cli.StringFlag{
		Name:  "csv",
		Usage: "The `filepath` for the CSV results.",
		Value: "bench_results.csv",
	}
	markdownPath = cli.StringFlag{
		Name:  "md",
		Usage: "The `filepath` for the markdown summary.",
		Value: "BENCH.md",
	}
	logLevel = cli.StringFlag{
		Name:  "log-level",
		Usage: "The logger `level(s)`.",
		Value: "*:INFO",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "bench"
	app.Usage = "Compare binary and text encodings of property list files"
	app.ArgsUsage = "files or directories..."
	app.Flags = []cli.Flag{csvPath, markdownPath, logLevel}
	app.Action = run

	err := app.Run(os.Args)
	if err != nil {
		log.Error("bench failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	err := logger.SetLogLevel(c.String(logLevel.Name))
	if err != nil {
		return err
	}

	roots := []string(c.Args())
	if len(roots) == 0 {
		roots = []string{findTestdata()}
	}
	files, err := collectFiles(roots)
	if err != nil {
		return err
	}
	log.Info("property list benchmark", "files", len(files))

	var results []CaseResult
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("skip", "file", path, "error", err.Error())
			continue
		}
		r, err := measure(path, data)
		if err != nil {
			log.Warn("skip", "file", path, "error", err.Error())
			continue
		}
		results = append(results, r)
	}
	totals := sumResults(results)

	if path := c.String(csvPath.Name); path != "" {
		err = writeFile(path, func(f *os.File) { writeCSV(f, results) })
		if err != nil {
			return err
		}
		log.Info("CSV written", "path", path)
	}
	if path := c.String(markdownPath.Name); path != "" {
		err = writeFile(path, func(f *os.File) { writeMarkdown(f, results, totals) })
		if err != nil {
			return err
		}
		log.Info("markdown written", "path", path)
	}

	log.Info("summary",
		"cases", len(results),
		"binary", totals.BinaryBytes,
		"openstep", totals.OpenStepBytes,
		"gnustep", totals.GNUStepBytes,
	)
	return nil
}

func writeFile(path string, fill func(f *os.File)) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	fill(f)
	return f.Close()
}

func findTestdata() string {
	paths := []string{
		"testdata",
		"../testdata",
		"../../testdata",
	}
	for _, p := range paths {
		if st, err := os.Stat(p); err == nil && st.IsDir() {
			return p
		}
	}
	return "."
}
