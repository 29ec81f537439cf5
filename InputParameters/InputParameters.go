package InputParameters

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/notargets/mshimport/mesh/readers"
)

// Output formats for import summaries
var Formats = map[string]bool{
	"yaml": true,
	"json": true,
	"text": true,
}

// Parameters obtained from the YAML input file
type ImportParameters struct {
	Title      string `json:"Title"`
	Strict     bool   `json:"Strict"`     // Diagnostics fail the import
	Decompress bool   `json:"Decompress"` // Sniff gzip and zstd input
	Workers    int    `json:"Workers"`    // Files imported concurrently
	Format     string `json:"Format"`     // yaml, json or text
}

// NewImportParameters returns the defaults used when no file is given
func NewImportParameters() *ImportParameters {
	return &ImportParameters{
		Decompress: true,
		Workers:    runtime.NumCPU(),
		Format:     "yaml",
	}
}

func (ip *ImportParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	return ip.Validate()
}

func (ip *ImportParameters) Validate() error {
	if ip.Workers < 1 {
		return fmt.Errorf("Workers must be at least 1, got %d", ip.Workers)
	}
	if !Formats[ip.Format] {
		keys := make([]string, 0, len(Formats))
		for k := range Formats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown Format %q, expected one of %v", ip.Format, keys)
	}
	return nil
}

// Options converts the parameters into reader options
func (ip *ImportParameters) Options(logger *slog.Logger) []readers.Option {
	return []readers.Option{
		readers.WithLogger(logger),
		readers.WithStrict(ip.Strict),
		readers.WithDecompression(ip.Decompress),
	}
}

func (ip *ImportParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%t]\t\t\t= Strict\n", ip.Strict)
	fmt.Fprintf(w, "[%t]\t\t\t= Decompress\n", ip.Decompress)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Workers\n", ip.Workers)
	fmt.Fprintf(w, "[%s]\t\t\t= Format\n", ip.Format)
}
