package paper_test

import (
	"fmt"

	"github.com/kmathlab/paperpdf/pkg/paper"
)

func ExampleBuilder_Build() {
	res, err := paper.Builder{}.Build("First paragraph.\n\nP ≠ NP → open.")
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, line := range res.Lines {
		fmt.Printf("%q\n", line)
	}
	fmt.Println("objects:", res.File.Size()-1)
	// Output:
	// "First paragraph."
	// ""
	// "P != NP -> open."
	// ""
	// objects: 5
}

func ExampleWrap() {
	for _, line := range paper.Wrap("the quick brown fox jumps over the lazy dog", 16, paper.Overflow) {
		fmt.Println(line)
	}
	// Output:
	// the quick brown
	// fox jumps over
	// the lazy dog
}
