package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orneryd/graphwalk/pkg/browser"
	"github.com/orneryd/graphwalk/pkg/logging"
	"github.com/orneryd/graphwalk/pkg/reveal"
	"github.com/orneryd/graphwalk/pkg/table"
)

func newRevealCmd(a *app) *cobra.Command {
	revealCmd := &cobra.Command{
		Use:   "reveal",
		Short: "Unlock a page with the clues from a web crawl and download its image",
		Long: `Reads the table written by "graphwalk web --out", joins the clue
column into a password, submits it on the reveal page in Chrome and
downloads the image the page reveals.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pageURL, _ := cmd.Flags().GetString("url")
			logPath, _ := cmd.Flags().GetString("log")
			column, _ := cmd.Flags().GetString("column")
			imagePath, _ := cmd.Flags().GetString("image")

			clues, err := readClues(logPath, column)
			if err != nil {
				return err
			}

			session, err := browser.NewChromeSession(cmd.Context(), browser.Options{
				Timeout:   a.cfg.Web.Timeout,
				UserAgent: a.cfg.Web.UserAgent,
				Headless:  a.cfg.Web.Headless,
				ExecPath:  a.cfg.Web.ChromePath,
			})
			if err != nil {
				return err
			}
			defer session.Close()

			img, err := os.Create(imagePath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", imagePath, err)
			}
			defer img.Close()

			res, err := reveal.Run(cmd.Context(), session, reveal.Options{
				URL:   pageURL,
				Clues: clues,
				Image: img,
				Log:   logging.Component(a.log, "reveal"),
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "location: %s\n", res.Location)
			fmt.Fprintf(cmd.OutOrStdout(), "image:    %s (%d bytes)\n", imagePath, res.Bytes)
			return nil
		},
	}
	revealCmd.Flags().String("url", "", "Reveal page URL")
	revealCmd.Flags().String("log", "", "CSV table from a web crawl")
	revealCmd.Flags().String("column", "clue", "Column holding the clues")
	revealCmd.Flags().String("image", "Current_Location.jpg", "Where to save the revealed image")
	_ = revealCmd.MarkFlagRequired("url")
	_ = revealCmd.MarkFlagRequired("log")
	return revealCmd
}

func readClues(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	tbl, err := table.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return tbl.Column(column)
}
