package arff_test

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rshade/arffkit/internal/arff"
)

// generateARFF builds a dataset with attrs numeric attributes, a nominal class and
// rows instances.
func generateARFF(attrs, rows int) string {
	var b strings.Builder
	b.WriteString("@relation bench\n")
	for i := 0; i < attrs; i++ {
		fmt.Fprintf(&b, "@attribute a%d numeric\n", i)
	}
	b.WriteString("@attribute class {neg,pos}\n@data\n")
	for r := 0; r < rows; r++ {
		for i := 0; i < attrs; i++ {
			fmt.Fprintf(&b, "%d.%d,", (r*31+i*7)%97, r%10)
		}
		if r%2 == 0 {
			b.WriteString("neg\n")
		} else {
			b.WriteString("pos\n")
		}
	}
	return b.String()
}

// BenchmarkParse benchmarks parsing of a 50-attribute, 1,000-row dataset.
func BenchmarkParse(b *testing.B) {
	b.ReportAllocs()
	data := []byte(generateARFF(50, 1000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := arff.Parse(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkWrite benchmarks writing the same dataset back out.
func BenchmarkWrite(b *testing.B) {
	b.ReportAllocs()
	d, err := arff.Parse(strings.NewReader(generateARFF(50, 1000)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err = arff.Write(io.Discard, d); err != nil {
			b.Fatal(err)
		}
	}
}
