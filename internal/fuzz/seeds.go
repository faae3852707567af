package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const maxSeedBytes = 64 << 10 // 64 KiB

// edgeSeeds cover line splitting, whitespace before '#' and tie-breaks.
var edgeSeeds = []string{
	"",
	"\n",
	"\r\n",
	"int a;\n",
	"#define X 1\n",
	"  \t#include <stdio.h>\r\n",
	"#ifdef A\n#endif",
	" #pragma once\n",
	" #if 0\n",
	"int l = __LINE__;\n",
	"char *s = \"#define inside string\";\n",
	"// #undef in a comment\n",
	"int a;\r",
	"x\ry\n#error\n",
	"__TIMESTAMP____DATE__\n",
	"\ufeff#elif X\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range edgeSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".c" && ext != ".h" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		src = src[:maxSeedBytes]
	}
	return append([]byte(nil), src...)
}
