package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orneryd/graphwalk/pkg/adjacency"
	"github.com/orneryd/graphwalk/pkg/browser"
	"github.com/orneryd/graphwalk/pkg/expand"
	"github.com/orneryd/graphwalk/pkg/logging"
	"github.com/orneryd/graphwalk/pkg/storage"
	"github.com/orneryd/graphwalk/pkg/table"
)

func newMatrixCmd(a *app) *cobra.Command {
	matrixCmd := &cobra.Command{
		Use:   "matrix",
		Short: "Search an adjacency matrix",
		Long: `Search an adjacency matrix loaded from a CSV file (--csv) or from
a matrix previously imported into the Badger store (--name).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			csvPath, _ := cmd.Flags().GetString("csv")
			name, _ := cmd.Flags().GetString("name")

			switch {
			case csvPath != "":
				m, err := readMatrixCSV(csvPath)
				if err != nil {
					return err
				}
				_, err = a.search(cmd, expand.NewMatrix(m), start)
				return err
			case name != "":
				store, err := a.openStore(cmd)
				if err != nil {
					return err
				}
				defer store.Close()

				sm, err := store.Matrix(name)
				if err != nil {
					return err
				}
				_, err = a.search(cmd, expand.NewMatrix(sm), start)
				return err
			default:
				return fmt.Errorf("one of --csv or --name is required")
			}
		},
	}
	matrixCmd.Flags().String("csv", "", "Adjacency matrix CSV file")
	matrixCmd.Flags().String("name", "", "Name of a stored matrix")
	matrixCmd.Flags().String("start", "", "Start node label")
	matrixCmd.PersistentFlags().String("data-dir", "", "Badger data directory")
	_ = matrixCmd.MarkFlagRequired("start")

	importCmd := &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Import an adjacency matrix CSV into the Badger store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			m, err := readMatrixCSV(args[0])
			if err != nil {
				return err
			}

			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveMatrix(name, m); err != nil {
				return fmt.Errorf("saving matrix: %w", err)
			}
			a.log.WithField("name", name).WithField("nodes", m.Len()).Info("matrix imported")
			return nil
		},
	}
	importCmd.Flags().String("name", "", "Name to store the matrix under")
	_ = importCmd.MarkFlagRequired("name")
	matrixCmd.AddCommand(importCmd)

	matrixCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored matrices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			names, err := store.Names()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	})

	return matrixCmd
}

func readMatrixCSV(path string) (*adjacency.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening matrix: %w", err)
	}
	defer f.Close()

	m, err := adjacency.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

func (a *app) openStore(cmd *cobra.Command) (*storage.MatrixStore, error) {
	dir := a.cfg.Storage.DataDir
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		dir = v
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return storage.Open(storage.BadgerOptions{
		DataDir:    dir,
		SyncWrites: a.cfg.Storage.SyncWrites,
		Logger:     logging.Component(a.log, "badger"),
	})
}

func newFilesCmd(a *app) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Search a directory of linked text files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			root := a.cfg.Files.Root
			if v, _ := cmd.Flags().GetString("root"); v != "" {
				root = v
			}
			marker := a.cfg.Files.LinkMarker
			if v, _ := cmd.Flags().GetString("marker"); v != "" {
				marker = v
			}

			f := expand.NewFiles(root, expand.WithLinkMarker(marker))
			_, err := a.search(cmd, f, start)
			fmt.Fprintf(cmd.OutOrStdout(), "message: %s\n", f.Message())
			return err
		},
	}
	filesCmd.Flags().String("root", "", "Directory holding one file per node")
	filesCmd.Flags().String("start", "", "Start file name")
	filesCmd.Flags().String("marker", "", "Substring marking the children line")
	_ = filesCmd.MarkFlagRequired("start")
	return filesCmd
}

func newWebCmd(a *app) *cobra.Command {
	webCmd := &cobra.Command{
		Use:   "web",
		Short: "Crawl a website and collect the first table of every page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetString("start")
			out, _ := cmd.Flags().GetString("out")
			web := a.cfg.Web
			if v, _ := cmd.Flags().GetString("driver"); v != "" {
				web.Driver = v
			}
			if cmd.Flags().Changed("same-host") {
				web.SameHost, _ = cmd.Flags().GetBool("same-host")
			}

			session, closeSession, err := browser.Open(cmd.Context(), browser.Options{
				Kind:      web.Driver,
				Timeout:   web.Timeout,
				UserAgent: web.UserAgent,
				Headless:  web.Headless,
				ExecPath:  web.ChromePath,
			})
			if err != nil {
				return err
			}
			defer closeSession()

			w := expand.NewWeb(session)
			var opts []expand.ResolveOption
			if web.SameHost {
				opts = append(opts, expand.SameHost())
			}
			_, searchErr := a.search(cmd, expand.ResolveLinks(w, opts...), start)

			tbl := w.Table()
			if tbl.Len() > 0 {
				tbl.Render(cmd.OutOrStdout())
			}
			if out != "" {
				if err := writeTableCSV(out, tbl); err != nil {
					return err
				}
				a.log.WithField("path", out).WithField("rows", tbl.Len()).Info("table written")
			}
			return searchErr
		},
	}
	webCmd.Flags().String("start", "", "Start URL")
	webCmd.Flags().String("driver", "", "Session driver (http, chrome)")
	webCmd.Flags().String("out", "", "Write the collected table to this CSV file")
	webCmd.Flags().Bool("same-host", true, "Only follow links on the start URL's host")
	_ = webCmd.MarkFlagRequired("start")
	return webCmd
}

func writeTableCSV(path string, tbl *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := tbl.WriteCSV(f, true); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
