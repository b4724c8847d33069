package fuzztests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	addSnippetSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все .c/.h файлы
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ".c" && ext != ".h" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil || len(src) > maxSeedBytes {
			return nil
		}
		f.Add(src)
		return nil
	})
	if err != nil {
		f.Logf("testdata walk: %v", err)
	}
}

var snippetSeeds = []string{
	"",
	"{\n",
	"if (x > 0)\n{\n}\n",
	"struct Foo\n{\n  int a;\n};\n",
	"void foo(int a) {\n}\n",
	"int x; /* comment\nstill comment */\nint y;\n",
	"int x = 5; // set x\n",
	"/* never closed\n",
	"a //* b\n",
	"while (1) // spin\n{\n}\n",
	"} else\n{\n",
	"/* a */ int b; /* c\n d */ e;\n",
}

func addSnippetSeeds(f *testing.F) {
	for _, s := range snippetSeeds {
		f.Add(bytes.Clone([]byte(s)))
	}
}
