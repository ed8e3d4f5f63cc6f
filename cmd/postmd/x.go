package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gubarz/postmd/internal/article"
	"github.com/gubarz/postmd/internal/config"
	"github.com/gubarz/postmd/internal/output"
	"github.com/gubarz/postmd/internal/xarticle"
)

var xCmd = &cobra.Command{
	Use:   "x <file.md>",
	Short: "Convert an article for the X editor",
	Long: `Renders an article as the restricted HTML the X article editor
accepts. Images become 【name】 placeholders to be inserted by hand; the
first image-only line is promoted to the cover unless one is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runX,
}

func init() {
	xCmd.Flags().String("title", "", "Override the title")
	xCmd.Flags().String("cover", "", "Cover image path or URL")
	xCmd.Flags().Bool("html-only", false, "Emit only the HTML")
	xCmd.Flags().String("save-html", "", "Also write the HTML to this file")
	xCmd.Flags().String("report", "", "Report file for file output mode")
	xCmd.Flags().StringP("output", "o", "", "Output mode: print, copy, file (default from config)")
	xCmd.Flags().String("format", "json", "Report format: json, yaml, text")
}

func runX(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	cover, _ := cmd.Flags().GetString("cover")
	htmlOnly, _ := cmd.Flags().GetBool("html-only")
	saveHTML, _ := cmd.Flags().GetString("save-html")
	report, _ := cmd.Flags().GetString("report")
	format, _ := cmd.Flags().GetString("format")
	if o, _ := cmd.Flags().GetString("output"); o != "" {
		config.SetOutput(o)
	}
	mode, err := output.ParseMode(config.GetOutput())
	if err != nil {
		return err
	}
	if err := checkReportPath(mode, report, saveHTML); err != nil {
		return err
	}

	doc, err := article.Load(args[0])
	if err != nil {
		return err
	}
	res := xarticle.Convert(doc, xarticle.Options{Title: title, Cover: cover})
	appLog.ArticleLoaded(doc.Path, res.Title, "")

	sink := output.New().WithWriter(cmd.OutOrStdout())
	if saveHTML != "" {
		if err := sink.Emit(res.HTML, output.File, saveHTML); err != nil {
			return err
		}
		appLog.Info("html saved", "file", saveHTML)
	}

	text := res.HTML
	if !htmlOnly {
		var buf bytes.Buffer
		if err := writeReport(&buf, format, res, func(w io.Writer) error {
			return printXResult(w, res)
		}); err != nil {
			return err
		}
		text = buf.String()
	}
	return sink.Emit(text, mode, report)
}

// checkReportPath rejects file output that has nowhere to go or would clobber
// the saved HTML.
func checkReportPath(mode output.Mode, report, saveHTML string) error {
	if mode != output.File {
		return nil
	}
	if report == "" {
		return errors.New("file output needs --report")
	}
	if saveHTML != "" && filepath.Clean(report) == filepath.Clean(saveHTML) {
		return errors.New("--report and --save-html must be different files")
	}
	return nil
}

func printXResult(w io.Writer, res xarticle.Result) error {
	fmt.Fprintf(w, "Title: %s\n", res.Title)
	if res.Cover != "" {
		fmt.Fprintf(w, "Cover: %s\n", res.Cover)
	}
	fmt.Fprintf(w, "Blocks: %d\n", res.TotalBlocks)
	for _, img := range res.Images {
		fmt.Fprintf(w, "  %s  %s\n", img.Placeholder, img.Target)
	}
	_, err := fmt.Fprintf(w, "\n%s", res.HTML)
	return err
}
