// Command testdoc renders docs/TESTS.md from the doc comments on test
// functions. Tests here describe behavior scenarios in their comments, so the
// generated file doubles as a behavior catalog.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type entry struct {
	pkg  string // package path relative to the scan root
	file string
	name string
	doc  string
}

func main() {
	var (
		root string
		out  string
	)
	flag.StringVar(&root, "root", ".", "directory to scan for _test.go files")
	flag.StringVar(&out, "out", "docs/TESTS.md", "output markdown file")
	flag.Parse()

	entries, err := collect(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "testdoc: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "testdoc: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(out, render(entries), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "testdoc: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d tests)\n", out, len(entries))
}

// collect walks root and extracts every Test function with its doc comment.
// Hidden directories and directories starting with _ are skipped.
func collect(root string) ([]entry, error) {
	var entries []entry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			rel = filepath.Dir(path)
		}

		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || !strings.HasPrefix(fn.Name.Name, "Test") || !takesTestingT(fn) {
				continue
			}
			e := entry{pkg: rel, file: d.Name(), name: fn.Name.Name}
			if fn.Doc != nil {
				e.doc = strings.TrimSpace(fn.Doc.Text())
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].pkg != entries[j].pkg {
			return entries[i].pkg < entries[j].pkg
		}
		if entries[i].file != entries[j].file {
			return entries[i].file < entries[j].file
		}
		return entries[i].name < entries[j].name
	})
	return entries, nil
}

func takesTestingT(fn *ast.FuncDecl) bool {
	if fn.Type.Params == nil || len(fn.Type.Params.List) != 1 {
		return false
	}
	star, ok := fn.Type.Params.List[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	sel, ok := star.X.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == "testing" && (sel.Sel.Name == "T" || sel.Sel.Name == "B")
}

func render(entries []entry) []byte {
	var b strings.Builder
	b.WriteString("# Test Catalog\n\n")
	b.WriteString("Generated by tools/testdoc. Do not edit by hand.\n")

	lastPkg := ""
	for _, e := range entries {
		if e.pkg != lastPkg {
			fmt.Fprintf(&b, "\n## %s\n\n", e.pkg)
			lastPkg = e.pkg
		}
		fmt.Fprintf(&b, "- **%s** (%s)", e.name, e.file)
		if e.doc != "" {
			fmt.Fprintf(&b, ": %s", strings.ReplaceAll(e.doc, "\n", " "))
		}
		b.WriteString("\n")
	}
	return []byte(b.String())
}
