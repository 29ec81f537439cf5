/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ghodss/yaml"
	"github.com/notargets/mshimport/InputParameters"
	"github.com/notargets/mshimport/mesh"
	"github.com/notargets/mshimport/mesh/readers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// FileSummary is the per-file result of an import
type FileSummary struct {
	File        string      `json:"file"`
	Version     float64     `json:"version,omitempty"`
	Digest      string      `json:"digest,omitempty"`
	Stats       *mesh.Stats `json:"stats,omitempty"`
	Diagnostics []string    `json:"diagnostics,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// ImportCmd represents the import command
var ImportCmd = &cobra.Command{
	Use:   "import <file or glob>...",
	Short: "Import MSH files and print a summary of each mesh",
	Long: `
Imports each file (globs may use **) and prints its vertex, edge and face
counts, surface names, bounding box, area and content digest.

mshimport import -I import.yaml --format json 'meshes/**/*.msh'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, err := processInput(cmd)
		if err != nil {
			return err
		}
		if ip.Title != "" {
			logger.Info("import parameters", "title", ip.Title)
		}

		files, err := expandPatterns(args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		summaries, err := importFiles(ctx, files, ip, logger)
		if err != nil {
			return err
		}
		if err = writeSummaries(cmd.OutOrStdout(), ip.Format, summaries); err != nil {
			return err
		}

		failed := 0
		for _, s := range summaries {
			if s.Error != "" {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to import", failed, len(summaries))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ImportCmd)
	ImportCmd.Flags().StringP("inputParameters", "I", "", "YAML file with import parameters")
	ImportCmd.Flags().Int("workers", 0, "number of files imported concurrently (default: number of CPUs)")
	ImportCmd.Flags().String("format", "", "summary format: yaml, json or text (default: yaml)")
	ImportCmd.Flags().Bool("strict", false, "fail a file on any diagnostic")
	_ = viper.BindPFlag("workers", ImportCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("format", ImportCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("strict", ImportCmd.Flags().Lookup("strict"))
}

// processInput layers the parameters file, then config, environment and flags,
// over the defaults
func processInput(cmd *cobra.Command) (*InputParameters.ImportParameters, error) {
	ip := InputParameters.NewImportParameters()

	ipFile, _ := cmd.Flags().GetString("inputParameters")
	if ipFile != "" {
		data, err := os.ReadFile(ipFile)
		if err != nil {
			return nil, err
		}
		if err = ip.Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", ipFile, err)
		}
	}

	if viper.IsSet("workers") && viper.GetInt("workers") > 0 {
		ip.Workers = viper.GetInt("workers")
	}
	if viper.IsSet("format") && viper.GetString("format") != "" {
		ip.Format = viper.GetString("format")
	}
	if viper.IsSet("strict") {
		ip.Strict = viper.GetBool("strict")
	}

	if err := ip.Validate(); err != nil {
		return nil, err
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		ip.Print(os.Stderr)
	}
	return ip, nil
}

// expandPatterns resolves globs in order, dropping repeats. A pattern with
// no glob characters is passed through so a missing file is reported.
func expandPatterns(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// importFiles loads every file with at most ip.Workers in flight. A failed
// file is recorded in its summary and does not stop the others.
func importFiles(ctx context.Context, files []string, ip *InputParameters.ImportParameters,
	logger *slog.Logger) ([]FileSummary, error) {

	summaries := make([]FileSummary, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ip.Workers)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fileLogger := logger.With("file", file)
			summaries[i] = summarize(file, ip.Options(fileLogger))
			if summaries[i].Error != "" {
				fileLogger.Error("import failed", "error", summaries[i].Error)
			} else {
				fileLogger.Debug("imported", "faces", summaries[i].Stats.NumFaces)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func summarize(file string, opts []readers.Option) FileSummary {
	summary := FileSummary{File: file}

	res, err := readers.ReadMeshFile(file, opts...)
	if err != nil {
		summary.Error = err.Error()
		return summary
	}

	stats := res.Mesh.Statistics()
	summary.Version = res.Header.Version
	summary.Digest = res.Digest
	summary.Stats = &stats
	for _, d := range res.Diagnostics {
		summary.Diagnostics = append(summary.Diagnostics, d.String())
	}
	return summary
}

func writeSummaries(w io.Writer, format string, summaries []FileSummary) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err

	case "text":
		for _, s := range summaries {
			if s.Error != "" {
				fmt.Fprintf(w, "%s: error: %s\n", s.File, s.Error)
				continue
			}
			fmt.Fprintf(w, "%s (MSH %g, blake3 %s)\n", s.File, s.Version, s.Digest)
			s.Stats.Fprint(w)
			for _, d := range s.Diagnostics {
				fmt.Fprintf(w, "  warning: %s\n", d)
			}
		}
		return nil

	default:
		data, err := yaml.Marshal(summaries)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
}
