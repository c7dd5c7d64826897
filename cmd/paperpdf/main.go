// paperpdf - writes plain text paragraphs to a single page PDF
package main

import (
	"bytes"
	_ "embed"
	"flag"
	"fmt"
	"os"

	"github.com/kmathlab/paperpdf/pkg/logger"
	"github.com/kmathlab/paperpdf/pkg/paper"
	"github.com/kmathlab/paperpdf/pkg/pdf"
)

//go:embed sample.txt
var sampleText string

func main() {
	output := flag.String("o", "docs/paper.pdf", "output PDF file")
	configFile := flag.String("config", "", "YAML layout file")
	width := flag.Int("width", 0, "wrap width in characters (default from layout)")
	strict := flag.Bool("strict", false, "fail on characters without a glyph")
	passThrough := flag.Bool("passthrough", false, "keep characters without a glyph")
	hardBreak := flag.Bool("hardbreak", false, "split words longer than the wrap width")
	title := flag.String("title", "", "document title")
	author := flag.String("author", "", "document author")
	pngFile := flag.String("png", "", "also render a PNG preview to this file")
	dpi := flag.Float64("r", 100, "preview resolution in DPI")
	quiet := flag.Bool("q", false, "only print errors")
	debug := flag.Bool("debug", false, "print debug messages")
	logLevel := flag.String("log", "", "log level: debug, info, warn or error")
	version := flag.Bool("v", false, "print version info")
	help := flag.Bool("h", false, "print usage information")
	flag.BoolVar(help, "help", false, "print usage information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "paperpdf version 1.0.0\n\n")
		fmt.Fprintf(os.Stderr, "Usage: paperpdf [options] [<text-file>]\n\n")
		fmt.Fprintf(os.Stderr, "Without a text file the built-in manual is written.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("paperpdf version 1.0.0")
		return
	}

	if *help || flag.NArg() > 1 {
		flag.Usage()
		return
	}

	level := logger.LevelInfo
	switch {
	case *quiet:
		level = logger.LevelError
	case *debug:
		level = logger.LevelDebug
	case *logLevel != "":
		l, err := logger.ParseLevel(*logLevel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		level = l
	}
	log := logger.New(os.Stderr, level, "paperpdf")

	if *strict && *passThrough {
		fmt.Fprintf(os.Stderr, "Error: -strict and -passthrough are mutually exclusive\n")
		os.Exit(1)
	}

	layout := paper.DefaultLayout()
	if *configFile != "" {
		var err error
		layout, err = paper.LoadLayout(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Debug("layout loaded from %s", *configFile)
	}
	if *width > 0 {
		layout.WrapWidth = *width
	}
	if *strict {
		layout.Missing = paper.MissStrict
	}
	if *passThrough {
		layout.Missing = paper.MissPassThrough
	}
	if *hardBreak {
		layout.LongWords = paper.HardBreak
	}

	text := sampleText
	if flag.NArg() == 1 {
		data, err := os.ReadFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Couldn't open file '%s': %v\n", flag.Arg(0), err)
			os.Exit(1)
		}
		text = string(data)
	}

	builder := paper.Builder{
		Layout: layout,
		Info:   pdf.Info{Title: *title, Author: *author},
		Logger: log,
	}
	if *title != "" || *author != "" {
		builder.Info.Producer = "paperpdf"
	}

	res, err := builder.WriteFile(*output, text)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *pngFile != "" {
		if err := writePreview(res.File, *pngFile, *dpi); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Info("preview written to %s", *pngFile)
	}

	if !*quiet {
		fmt.Printf("PDF written to %s\n", *output)
		fmt.Printf("Lines:          %d\n", len(res.Lines))
		fmt.Printf("Size:           %d bytes\n", len(res.File.Bytes()))
		fmt.Printf("BLAKE2b-256:    %x\n", res.File.Digest())
	}
}

// writePreview renders the page of f to a PNG file.
func writePreview(f *pdf.File, path string, dpi float64) error {
	doc, err := pdf.NewDocument(f.Bytes())
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	img, err := pdf.NewPageRenderer(doc, dpi).RenderPage(1)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.WritePNG(&buf, img); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return pdf.WriteFile(path, buf.Bytes())
}
