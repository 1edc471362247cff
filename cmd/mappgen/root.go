package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	mapp "github.com/metaview-dev/mapp-sdk"
	"github.com/metaview-dev/mapp-sdk/application/bindgen"
	"github.com/metaview-dev/mapp-sdk/application/schema"
	"github.com/metaview-dev/mapp-sdk/domain/signature"
)

type rootOptions struct {
	table string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "mappgen",
		Short:         "Generate Mapp host and guest bindings",
		Long:          "mappgen renders the Go bindings and the JSON wire schema for a Mapp Signature Table",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.table, "table", "",
		"path to a signature table (defaults to the built-in Mapp table)")

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newSchemaCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func (o *rootOptions) loadTable() (*signature.Table, error) {
	if o.table == "" {
		return signature.Default(), nil
	}
	return signature.Load(o.table)
}

type generateOptions struct {
	mode string
	out  string
	pkg  string
	tag  string
	all  bool
	dir  string
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Render the bindings for one mode, or every mode with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := root.loadTable()
			if err != nil {
				return err
			}

			if opts.all {
				for _, mode := range bindgen.Modes() {
					src, err := bindgen.Generate(table, mode)
					if err != nil {
						return err
					}
					if err := writeOutput(cmd.OutOrStdout(), filepath.Join(opts.dir, mode.FileName()), src); err != nil {
						return err
					}
				}
				return nil
			}

			if opts.mode == "" {
				return fmt.Errorf("either --mode or --all is required")
			}
			mode, err := bindgen.ParseMode(opts.mode)
			if err != nil {
				return err
			}

			var genOpts []bindgen.Option
			if opts.pkg != "" {
				genOpts = append(genOpts, bindgen.WithPackage(opts.pkg))
			}
			if cmd.Flags().Changed("tag") {
				genOpts = append(genOpts, bindgen.WithBuildTag(opts.tag))
			}

			src, err := bindgen.Generate(table, mode, genOpts...)
			if err != nil {
				return err
			}
			out := opts.out
			if out == "" {
				out = mode.FileName()
			}
			return writeOutput(cmd.OutOrStdout(), out, src)
		},
	}

	generateCmd.Flags().StringVar(&opts.mode, "mode", "",
		fmt.Sprintf("binding mode, one of %v", bindgen.Modes()))
	generateCmd.Flags().StringVarP(&opts.out, "out", "o", "",
		"output file, or - for stdout (defaults to the mode's file name)")
	generateCmd.Flags().StringVar(&opts.pkg, "package", "", "package clause of the output")
	generateCmd.Flags().StringVar(&opts.tag, "tag", "", "build constraint of the output")
	generateCmd.Flags().BoolVar(&opts.all, "all", false, "render every mode into --dir")
	generateCmd.Flags().StringVar(&opts.dir, "dir", ".", "output directory for --all")
	generateCmd.MarkFlagsMutuallyExclusive("all", "mode")
	generateCmd.MarkFlagsMutuallyExclusive("all", "out")
	generateCmd.MarkFlagsMutuallyExclusive("all", "package")
	generateCmd.MarkFlagsMutuallyExclusive("all", "tag")

	return generateCmd
}

func newSchemaCmd(root *rootOptions) *cobra.Command {
	var out string

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Emit the JSON Schema of the wire format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table, err := root.loadTable()
			if err != nil {
				return err
			}
			doc, err := schema.Generate(table)
			if err != nil {
				return err
			}
			data, err := schema.Marshal(doc)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), out, append(data, '\n'))
		},
	}

	schemaCmd.Flags().StringVarP(&out, "out", "o", "-", "output file, or - for stdout")

	return schemaCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the binding version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), mapp.Version)
		},
	}
}

func writeOutput(stdout io.Writer, file string, data []byte) error {
	if file == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", file, err)
	}
	return nil
}
