package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/config"
	"library-catalog/library"
)

func newAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "admin",
		Short: "Log in and manage the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newConsole(cmd.InOrStdin(), cmd.OutOrStdout(), cat, gate).adminSession()
		},
	}
}

func newPatronCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patron",
		Short: "Browse, borrow and return books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newConsole(cmd.InOrStdin(), cmd.OutOrStdout(), cat, gate).patronMenu()
		},
	}
}

func newListCmd() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			compare, err := library.Comparator(by)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cat.Len() == 0 {
				warn(out, "No books in the library.")
				return nil
			}
			cat.Sort(compare)
			fmt.Fprint(out, renderBooks(cat.Books()))
			return nil
		},
	}

	cmd.Flags().StringVar(&by, "by", "title", "Sort field: title, author or year")
	return cmd
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <title>",
		Short: "Look up a book by its exact title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			i, b, found := cat.Find(strings.Join(args, " "))
			if !found {
				warn(out, "Book not found!")
				return nil
			}
			ok(out, "Book found: %d. %s", i+1, b)
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the libcat config file",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			if err := config.Save(config.Default(), path); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			ok(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func configPath() string {
	if flagConfig != "" {
		return config.ExpandHome(flagConfig)
	}
	if p := os.Getenv("LIBCAT_CONFIG"); p != "" {
		return config.ExpandHome(p)
	}
	return config.DefaultPath()
}
