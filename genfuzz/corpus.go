package genfuzz

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pingcap/errors"
	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"github.com/gongzhxu/jsonbparser/jsonb/jsonbtest"
)

// Case is one named corpus entry: a random tree plus its encoded bytes,
// named with a UUID so repeated runs never collide on disk.
type Case struct {
	Name string
	Tree jsonbtest.Node
	Raw  []byte
}

// GenerateCases builds n random cases with Faker f.
func GenerateCases(f *Faker, n int) []Case {
	cases := make([]Case, n)
	for i := range cases {
		tree := f.RandomJSON(f.ContainerChance, 0)
		cases[i] = Case{
			Name: uuid.NewString(),
			Tree: tree,
			Raw:  jsonbtest.Encode(tree),
		}
	}
	return cases
}

// WriteCorpusArchive writes cases as a zstd-compressed tar archive
// (one file per case, named <uuid>.jsonb) to path.
func WriteCorpusArchive(ctx context.Context, path string, cases []Case) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Annotatef(err, "genfuzz: create corpus archive")
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return errors.Annotatef(err, "genfuzz: init zstd writer")
	}
	defer zw.Close()

	tw := tar.NewWriter(zw)
	defer tw.Close()

	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return errors.Trace(err)
		}
		hdr := &tar.Header{
			Name: c.Name + ".jsonb",
			Mode: 0o644,
			Size: int64(len(c.Raw)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Annotatef(err, "genfuzz: write tar header for %s", c.Name)
		}
		if _, err := tw.Write(c.Raw); err != nil {
			return errors.Annotatef(err, "genfuzz: write tar body for %s", c.Name)
		}
	}
	return nil
}

// ReadCorpusArchive decompresses and unpacks a corpus archive written by
// WriteCorpusArchive, returning each entry's raw bytes keyed by name.
func ReadCorpusArchive(path string) (map[string][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "genfuzz: open corpus archive")
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, errors.Annotatef(err, "genfuzz: init zstd reader")
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	out := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Annotatef(err, "genfuzz: read tar entry")
		}
		buf := make([]byte, hdr.Size)
		if _, err := io.ReadFull(tr, buf); err != nil {
			return nil, errors.Annotatef(err, "genfuzz: read tar body for %s", hdr.Name)
		}
		out[filepath.Base(hdr.Name)] = buf
	}
	return out, nil
}

// SeedJSONLiteralsFromDDL parses a block of CREATE TABLE DDL (as produced
// by pg_dump-style schema dumps translated to SQL for corpus authoring)
// and extracts every quoted string literal attached to a column's DEFAULT
// clause, whatever the column's type, for use as realistic (non-random)
// seed corpus entries
// alongside the Faker's random trees.
func SeedJSONLiteralsFromDDL(ddl string) ([]string, error) {
	p := parser.New()
	stmtNodes, _, err := p.ParseSQL(ddl)
	if err != nil {
		return nil, errors.Annotatef(err, "genfuzz: parse seed DDL")
	}

	var literals []string
	v := &defaultLiteralVisitor{out: &literals}
	for _, stmt := range stmtNodes {
		stmt.Accept(v)
	}
	return literals, nil
}

// defaultLiteralVisitor walks a parsed statement collecting the string
// value of every column DEFAULT clause, regardless of the column's
// declared type (callers filter for jsonb-looking content themselves;
// the tidb parser used here targets MySQL-dialect DDL, so this is a best
// effort textual seed source rather than a type-aware one).
type defaultLiteralVisitor struct {
	out *[]string
}

func (v *defaultLiteralVisitor) Enter(n ast.Node) (ast.Node, bool) {
	if opt, ok := n.(*ast.ColumnOption); ok && opt.Tp == ast.ColumnOptionDefaultValue {
		if expr, ok := opt.Expr.(ast.ValueExpr); ok {
			if s, ok := expr.GetValue().(string); ok {
				*v.out = append(*v.out, s)
			}
		}
	}
	return n, false
}

func (v *defaultLiteralVisitor) Leave(n ast.Node) (ast.Node, bool) {
	return n, true
}
