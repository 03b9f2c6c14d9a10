package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/Neumenon/plist/plist"
	"github.com/Neumenon/plist/plist/bridge"
)

func convertAction(c *cli.Context, cfg *Config) error {
	data, err := readInput(c.Args().First())
	if err != nil {
		return err
	}

	format := c.String("format")
	if format == "" {
		format = cfg.Output.Format
	}
	out, err := convert(data, format, cfg.Output)
	if err != nil {
		return err
	}

	path := c.String("output")
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	log.Debug("writing output", "path", path, "format", format, "bytes", len(out))
	return os.WriteFile(path, out, 0o644)
}

func lintAction(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("lint: no files given")
	}
	return lintFiles(os.Stdout, c.Args())
}

func inspectAction(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("inspect: no file given")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read input")
	}
	return inspect(os.Stdout, data, c.Bool("dump"))
}

func readInput(path string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open file")
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read input")
	}
	return data, nil
}

// convert decodes a property list in any supported format and renders it
// in the named output format.
func convert(data []byte, format string, opts OutputConfig) ([]byte, error) {
	v, from, err := plist.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode input")
	}
	log.Debug("decoded input", "format", from.String(), "kind", v.Kind().String())

	switch strings.ToLower(format) {
	case "json":
		out, err := bridge.ToJSON(v, bridge.Opts{Extended: opts.ExtendedJSON, Indent: opts.JSONIndent})
		if err != nil {
			return nil, errors.Wrap(err, "encode json")
		}
		return append(out, '\n'), nil
	case "yaml":
		out, err := bridge.ToYAML(v)
		return out, errors.Wrap(err, "encode yaml")
	}

	f, err := plist.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	out, err := plist.Encode(v, f)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", f)
	}
	return out, nil
}

// lintFiles decodes every path, printing one status line per file, and
// fails when any file does not decode.
func lintFiles(w io.Writer, paths []string) error {
	failed := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err == nil {
			var f plist.Format
			_, f, err = plist.Decode(data)
			if err == nil {
				fmt.Fprintf(w, "%s: ok (%s)\n", path, f)
				continue
			}
		}
		failed++
		fmt.Fprintf(w, "%s: %v\n", path, err)
		log.Debug("lint failure", "path", path, "error", err.Error())
	}
	if failed > 0 {
		return errors.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func inspect(w io.Writer, data []byte, dump bool) error {
	f := plist.DetectFormat(data)
	fmt.Fprintf(w, "format:  %s\n", f)
	fmt.Fprintf(w, "size:    %d bytes\n", len(data))

	if f != plist.BinaryFormat {
		charset, _ := plist.DetectCharset(data)
		fmt.Fprintf(w, "charset: %s\n", charset)
		v, _, err := plist.Decode(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "root:    %s (%d)\n", v.Kind(), v.Len())
		fmt.Fprintf(w, "digest:  %s\n", plist.DigestHex(v))
		return nil
	}

	t, err := plist.ParseTrailer(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "version: %s\n", t.Version)
	fmt.Fprintf(w, "objects: %d\n", t.NumObjects)
	fmt.Fprintf(w, "top:     %d\n", t.TopObject)
	fmt.Fprintf(w, "offsets: %d (offset size %d, ref size %d)\n", t.OffsetTableOffset, t.OffsetSize, t.ObjectRefSize)
	if dump {
		spew.Fdump(w, t)
	}

	v, err := plist.DecodeBinary(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "root:    %s (%d)\n", v.Kind(), v.Len())
	fmt.Fprintf(w, "digest:  %s\n", plist.DigestHex(v))
	return nil
}
