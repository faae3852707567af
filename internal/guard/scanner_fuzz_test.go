package guard

import (
	"strings"
	"testing"
)

func FuzzScan(f *testing.F) {
	seeds := []string{
		"",
		"\n",
		"int main(void){\n  return 0;\n}\n",
		"#include<stdio.h>\n",
		"  printf(\"%d\\n\", __LINE__);",
		"a\r\nb\r\n#if 1\r\n",
		" #define X",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	s := NewScanner(nil)
	f.Fuzz(func(t *testing.T, text string) {
		found, ok := s.Find(text)
		if !ok {
			if s.Scan(text) != nil {
				t.Fatalf("Find and Scan disagree on %q", text)
			}
			return
		}
		if strings.Contains(found.Text, "\n") {
			t.Fatalf("finding text spans lines: %q", found.Text)
		}
		if !strings.HasPrefix(text[found.Offset:], found.Text) {
			t.Fatalf("offset %d does not point at %q", found.Offset, found.Text)
		}
		if _, ok := s.Catalog().First(found.Text); !ok {
			t.Fatalf("reported line %q does not match the catalog", found.Text)
		}
		for _, earlier := range strings.Split(text[:found.Offset], "\n") {
			if _, ok := s.Catalog().First(strings.TrimSuffix(earlier, "\r")); ok {
				t.Fatalf("line %q before the finding also matches", earlier)
			}
		}
	})
}
