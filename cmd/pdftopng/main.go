// pdftopng - renders the first page of a PDF to a PNG preview
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kmathlab/paperpdf/pkg/pdf"
)

func main() {
	pageNum := flag.Int("f", 1, "page to render")
	resolution := flag.Float64("r", 150, "resolution in DPI")
	quiet := flag.Bool("q", false, "don't print any messages")
	version := flag.Bool("v", false, "print version info")
	help := flag.Bool("h", false, "print usage information")
	flag.BoolVar(help, "help", false, "print usage information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pdftopng version 1.0.0\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pdftopng [options] <PDF-file> [<output.png>]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *version {
		fmt.Println("pdftopng version 1.0.0")
		return
	}

	if *help || flag.NArg() < 1 {
		flag.Usage()
		return
	}

	pdfFile := flag.Arg(0)
	outputFile := flag.Arg(1)
	if outputFile == "" {
		outputFile = strings.TrimSuffix(filepath.Base(pdfFile), ".pdf") + ".png"
	}

	doc, err := pdf.Open(pdfFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening PDF: %v\n", err)
		os.Exit(1)
	}
	defer doc.Close()

	renderer := pdf.NewPageRenderer(doc, *resolution)
	img, err := renderer.RenderPage(*pageNum)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering page %d: %v\n", *pageNum, err)
		os.Exit(1)
	}
	if !*quiet {
		for _, op := range renderer.Skipped() {
			fmt.Fprintf(os.Stderr, "Skipped operator %s (%d times)\n", op.Operator, op.Count)
		}
	}

	var buf bytes.Buffer
	if err := pdf.WritePNG(&buf, img); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding PNG: %v\n", err)
		os.Exit(1)
	}
	if err := pdf.WriteFile(outputFile, buf.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if !*quiet {
		b := img.Bounds()
		fmt.Printf("Wrote %s (%dx%d)\n", outputFile, b.Dx(), b.Dy())
	}
}
