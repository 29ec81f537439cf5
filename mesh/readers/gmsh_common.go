package readers

import (
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/mshimport/mesh"
	"lukechampine.com/blake3"
)

// Result is a successfully imported mesh with everything learned on the way
type Result struct {
	Mesh        *mesh.Mesh
	Header      FormatHeader
	Diagnostics []Diagnostic
	Digest      string // BLAKE3-256 of the decoded MSH text, hex encoded
}

// Option configures a read
type Option func(*options)

type options struct {
	logger     *slog.Logger
	strict     bool
	decompress bool
}

// WithLogger sends diagnostics to logger as they are found
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStrict turns any diagnostic into a failed read
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithDecompression enables or disables gzip/zstd sniffing (default on)
func WithDecompression(enabled bool) Option {
	return func(o *options) { o.decompress = enabled }
}

func newOptions(opts []Option) *options {
	o := &options{
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		decompress: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string, opts ...Option) (*Result, error) {
	name := strings.ToLower(filepath.Base(filename))

	switch {
	case strings.HasSuffix(name, ".msh"),
		strings.HasSuffix(name, ".msh.gz"),
		strings.HasSuffix(name, ".msh.zst"):
		return Load(filename, opts...)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", filepath.Ext(filename))
	}
}

// Load reads a Gmsh MSH file, format 2.x or 4.x, from disk
func Load(filename string, opts ...Option) (*Result, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	res, err := Read(file, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return res, nil
}

// Read parses MSH text from r and assembles the mesh. On any fatal error
// no result is returned.
func Read(r io.Reader, opts ...Option) (*Result, error) {
	o := newOptions(opts)

	src := r
	if o.decompress {
		dr, closeFn, err := decompress(r)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		src = dr
	}

	// The digest only covers what the scanner reads; parse must run to EOF.
	hasher := blake3.New(32, nil)
	diags := &diagnostics{logger: o.logger}
	p := &parser{
		sc:     newLineScanner(io.TeeReader(src, hasher), diags),
		tables: mesh.NewTables(),
	}

	if err := p.parse(); err != nil {
		return nil, err
	}

	msh, err := mesh.Build(p.tables)
	if err != nil {
		return nil, err
	}

	if o.strict && len(diags.list) > 0 {
		return nil, fmt.Errorf("%w: %d found, first: %s", ErrDiagnostics, len(diags.list), diags.list[0])
	}

	return &Result{
		Mesh:        msh,
		Header:      p.header,
		Diagnostics: diags.list,
		Digest:      hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// parser drives the scanner through the sections of one file
type parser struct {
	sc      *lineScanner
	header  FormatHeader
	grammar grammar
	tables  *mesh.Tables
}

func (p *parser) parse() error {
	first, ok := p.sc.nextLine()
	if !ok || first != "$MeshFormat" {
		if err := p.sc.err(); err != nil {
			return fmt.Errorf("scanner error: %w", err)
		}
		return ErrNotAnMshFile
	}

	var err error
	if p.header, err = readMeshFormat(p.sc); err != nil {
		return err
	}
	p.grammar = newGrammar(p.header)

	for {
		kind, token := p.sc.nextSection()
		switch kind {
		case sectionEOF:
			if err := p.sc.err(); err != nil {
				return fmt.Errorf("scanner error: %w", err)
			}
			return nil

		case sectionMeshFormat:
			p.sc.skipSection(token)

		case sectionPhysicalNames:
			err = readPhysicalNames(p.sc, p.tables.Names)

		case sectionEntities:
			if bg, ok := p.grammar.(*blockGrammar); ok {
				err = bg.readEntities(p.sc)
			} else {
				p.sc.skipSection(token)
			}

		case sectionNodes:
			err = p.grammar.readNodes(p.sc, p.tables, "$EndNodes")

		case sectionParametricNodes:
			if p.header.IsLegacy() {
				err = p.grammar.readNodes(p.sc, p.tables, "$EndParametricNodes")
			} else {
				p.sc.skipSection(token)
			}

		case sectionElements:
			err = p.grammar.readElements(p.sc, p.tables)
		}
		if err != nil {
			return err
		}
	}
}
