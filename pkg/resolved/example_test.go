package resolved_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/depmerge/pkg/resolved"
)

func ExampleEncode() {
	foo := resolved.NewDependency(resolved.MustID("foo"), "2.0")
	foo.SetRequestedVersion(resolved.Root, "2.0")
	foo.AddArtifactPath("/lib/foo.klib")

	bar := resolved.NewDependency(resolved.MustID("bar"), "1.1")
	bar.SetRequestedVersion(foo.ID, "1.0")
	bar.AddArtifactPath("/lib/bar.klib")

	_ = resolved.Encode(os.Stdout, []*resolved.Dependency{foo, bar})
	// Output:
	// 1 foo[2.0] #0[2.0]
	// 	/lib/foo.klib
	// 2 bar[1.1] #1[1.0]
	// 	/lib/bar.klib
}

func ExampleDecode() {
	text := "1 foo[2.0] #0[2.0]\n\t/lib/foo.klib\n"

	deps := resolved.Decode([]byte(text), func(n int, line string) {
		fmt.Printf("malformed line %d: %q\n", n, line)
	})
	for _, d := range deps {
		v, _ := d.RequestedVersion(resolved.Root)
		fmt.Println(d.ID, d.SelectedVersion, v, d.ArtifactPaths())
	}
	// Output:
	// foo 2.0 2.0 [/lib/foo.klib]
}
