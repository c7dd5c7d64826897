package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// StructureError reports a cross-reference entry that does not match the
// bytes of the file. Offsets are -1 when unknown.
type StructureError struct {
	Object int
	XRef   int64 // offset stated by the xref table
	Actual int64 // offset where the object header was found
	Reason string
}

func (e *StructureError) Error() string {
	if e.Object < 0 {
		return "pdf: " + e.Reason
	}
	return fmt.Sprintf("pdf: object %d: %s (xref offset %d, found at %d)",
		e.Object, e.Reason, e.XRef, e.Actual)
}

// objHeader matches "n g obj" at the start of a line.
var objHeader = regexp.MustCompile(`(?m)^(\d+) (\d+) obj\b`)

// ScanObjects finds every "n g obj" header that starts a line and returns
// its offset by object number. Used to verify xref offsets independently
// of the table itself.
func ScanObjects(data []byte) map[int]int64 {
	found := make(map[int]int64)
	for _, m := range objHeader.FindAllSubmatchIndex(data, -1) {
		num, err := strconv.Atoi(string(data[m[2]:m[3]]))
		if err != nil {
			continue
		}
		if _, dup := found[num]; !dup {
			found[num] = int64(m[0])
		}
	}
	return found
}

// CheckReport summarises a structural check.
type CheckReport struct {
	Objects   int   // in-use xref entries
	Size      int64 // /Size from the trailer
	StartXRef int64
}

// Check verifies the structure of a parsed document: every in-use xref
// offset must point at its own object header, the free list head must be
// the 65535 entry for object 0, /Size must cover the table, startxref must
// point at the xref keyword and the file must end with %%EOF.
// All problems are returned joined into one error.
func (d *Document) Check() (CheckReport, error) {
	var problems []error
	report := CheckReport{StartXRef: d.StartXRef}

	if !bytes.HasPrefix(d.data[d.StartXRef:], []byte("xref")) {
		problems = append(problems, &StructureError{Object: -1,
			Reason: fmt.Sprintf("startxref %d does not point at an xref section", d.StartXRef)})
	}
	if !bytes.HasSuffix(bytes.TrimRight(d.data, "\r\n"), []byte("%%EOF")) {
		problems = append(problems, &StructureError{Object: -1, Reason: "missing %%EOF marker"})
	}

	scanned := ScanObjects(d.data)
	entries := d.XRef()
	for i, e := range entries {
		if e.Number != i {
			problems = append(problems, &StructureError{Object: -1,
				Reason: fmt.Sprintf("xref table has a gap before object %d", e.Number)})
			break
		}
	}
	for _, e := range entries {
		if e.Number == 0 {
			if e.InUse || e.Generation != 65535 {
				problems = append(problems, &StructureError{Object: 0, XRef: e.Offset, Actual: -1,
					Reason: "object 0 must be the free list head with generation 65535"})
			}
			continue
		}
		if !e.InUse {
			continue
		}
		report.Objects++

		actual, ok := scanned[e.Number]
		if !ok {
			actual = -1
		}
		header := []byte(fmt.Sprintf("%d %d obj", e.Number, e.Generation))
		if e.Offset < 0 || e.Offset >= int64(len(d.data)) || !bytes.HasPrefix(d.data[e.Offset:], header) {
			problems = append(problems, &StructureError{Object: e.Number, XRef: e.Offset, Actual: actual,
				Reason: "xref offset does not point at the object header"})
		}
	}

	size, ok := d.Trailer.GetInt("Size")
	report.Size = size
	switch {
	case !ok:
		problems = append(problems, &StructureError{Object: -1, Reason: "trailer has no /Size"})
	case size != int64(len(entries)):
		problems = append(problems, &StructureError{Object: -1,
			Reason: fmt.Sprintf("trailer /Size %d, xref has %d entries", size, len(entries))})
	}

	return report, errors.Join(problems...)
}
