package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logging"
)

// entry is one book in the import file.
type entry struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
	Year   int    `yaml:"year"`
}

func main() {
	var (
		file       string
		configPath string
		catalog    string
		driver     string
	)

	cmd := &cobra.Command{
		Use:           "import_books",
		Short:         "Append books from a YAML list to the libcat catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if catalog != "" {
				cfg.Catalog.Path = config.ExpandHome(catalog)
			}
			if driver != "" {
				cfg.Catalog.Driver = driver
			}

			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			entries, err := readEntries(f)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}

			logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			store, err := library.OpenStore(cfg.Catalog.Driver, cfg.Catalog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			cat, err := library.Open(store, library.WithLogger(logger))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Importing %d books into %s...\n", len(entries), cfg.Catalog.Path)
			imported, skipped, err := importEntries(cat, entries, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nImport complete!\n")
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported: %d books\n", imported)
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped: %d\n", skipped)
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog now holds %d books\n", cat.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "books.yml", "YAML file with a list of {title, author, year}")
	cmd.Flags().StringVar(&configPath, "config", "", "Config file path (default: ~/.config/libcat/config.yml)")
	cmd.Flags().StringVar(&catalog, "catalog", "", "Catalog snapshot path (overrides catalog.path)")
	cmd.Flags().StringVar(&driver, "driver", "", "Snapshot backend: json or sqlite")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func readEntries(r io.Reader) ([]entry, error) {
	var entries []entry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil && err != io.EOF {
		return nil, err
	}
	return entries, nil
}

// importEntries adds every entry with a title. A save failure stops the import.
func importEntries(cat *library.Catalog, entries []entry, out io.Writer) (imported, skipped int, err error) {
	for i, e := range entries {
		b, err := cat.Add(e.Title, e.Author, e.Year)
		if errors.Is(err, library.ErrEmptyTitle) {
			fmt.Fprintf(out, "%s entry %d has no title, skipping\n", color.YellowString("!"), i+1)
			skipped++
			continue
		}
		if err != nil {
			return imported, skipped, err
		}
		fmt.Fprintf(out, "%s %s\n", color.GreenString("✓"), b)
		imported++
	}
	return imported, skipped, nil
}
