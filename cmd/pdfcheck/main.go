// pdfcheck - prints the structure of a PDF and verifies its xref table
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kmathlab/paperpdf/pkg/pdf"
)

var (
	listXRef     bool
	printVersion bool
	printHelp    bool
)

func init() {
	flag.BoolVar(&listXRef, "xref", false, "print every xref entry")
	flag.BoolVar(&printVersion, "v", false, "print version info")
	flag.BoolVar(&printHelp, "h", false, "print usage information")
	flag.BoolVar(&printHelp, "help", false, "print usage information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pdfcheck version 1.0.0\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pdfcheck [options] <PDF-file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  -xref             : print every xref entry\n")
		fmt.Fprintf(os.Stderr, "  -v                : print version info\n")
		fmt.Fprintf(os.Stderr, "  -h                : print usage information\n")
		fmt.Fprintf(os.Stderr, "  -help             : print usage information\n")
	}
}

func main() {
	flag.Parse()

	if printVersion {
		fmt.Println("pdfcheck version 1.0.0")
		os.Exit(0)
	}

	if printHelp {
		flag.Usage()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	inputFile := args[0]

	doc, err := pdf.Open(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Couldn't open file '%s': %v\n", inputFile, err)
		os.Exit(1)
	}
	defer doc.Close()

	info := doc.GetInfo()
	fmt.Printf("PDF version:    %s\n", info.PDFVersion)
	if info.Title != "" {
		fmt.Printf("Title:          %s\n", info.Title)
	}
	if info.Author != "" {
		fmt.Printf("Author:         %s\n", info.Author)
	}
	fmt.Printf("Pages:          %d\n", doc.NumPages())
	if doc.NumPages() > 0 {
		page, _ := doc.GetPage(1)
		fmt.Printf("Page size:      %.2f x %.2f pts\n", page.Width(), page.Height())
	}
	fmt.Printf("File size:      %d bytes\n", len(doc.Bytes()))

	if listXRef {
		for _, e := range doc.XRef() {
			status := "n"
			if !e.InUse {
				status = "f"
			}
			fmt.Printf("  %4d  %010d %05d %s\n", e.Number, e.Offset, e.Generation, status)
		}
	}

	report, err := doc.Check()
	fmt.Printf("Objects:        %d\n", report.Objects)
	fmt.Printf("Trailer size:   %d\n", report.Size)
	fmt.Printf("startxref:      %d\n", report.StartXRef)
	if err != nil {
		var se *pdf.StructureError
		if errors.As(err, &se) {
			fmt.Println("Structure:      broken")
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Structure:      ok")
}
