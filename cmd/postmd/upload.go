package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gubarz/postmd/internal/config"
	"github.com/gubarz/postmd/internal/upload"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".svg": true, ".bmp": true, ".avif": true,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file.md|image>",
	Short: "Upload local images and rewrite their references",
	Long: `Uploads every local image referenced by a Markdown file and rewrites
the file to point at the uploaded URLs. Given an image, uploads it and
prints the URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringP("uploader", "u", "", "Uploader: piclist, picgo, custom (default from config)")
	uploadCmd.Flags().StringP("api", "a", "", "Upload API URL (default from config)")
	uploadCmd.Flags().BoolP("dry-run", "d", false, "List images without uploading")
	uploadCmd.Flags().Bool("no-cache", false, "Ignore the upload cache")
	uploadCmd.Flags().String("format", "text", "Output format: text, json, yaml")
}

func runUpload(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("uploader")
	api, _ := cmd.Flags().GetString("api")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	format, _ := cmd.Flags().GetString("format")

	proc, closeFn, err := newProcessor(kind, api, config.C.Upload.Cache && !noCache)
	if err != nil {
		return err
	}
	defer closeFn()
	proc.DryRun = dryRun

	path := args[0]
	out := cmd.OutOrStdout()

	if imageExts[strings.ToLower(filepath.Ext(path))] {
		r := proc.UploadFile(cmd.Context(), path)
		if err := writeReport(out, format, r, func(w io.Writer) error {
			if r.URL != "" {
				_, err := fmt.Fprintln(w, r.URL)
				return err
			}
			_, err := fmt.Fprintf(w, "%s: %s %s\n", r.Path, r.Status, r.Error)
			return err
		}); err != nil {
			return err
		}
		if r.Status == upload.StatusFailed || r.Status == upload.StatusMissing {
			return fmt.Errorf("upload %s: %s", path, r.Status)
		}
		return nil
	}

	rep, err := proc.ProcessFile(cmd.Context(), path)
	if err != nil {
		return err
	}
	if err := writeReport(out, format, rep, func(w io.Writer) error {
		return printUploadReport(w, rep, dryRun)
	}); err != nil {
		return err
	}
	if rep.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d images failed", rep.Summary.Failed, rep.Summary.Total)
	}
	return nil
}

func printUploadReport(w io.Writer, rep upload.Report, dryRun bool) error {
	if len(rep.Results) == 0 {
		_, err := fmt.Fprintf(w, "no local images in %s\n", rep.File)
		return err
	}
	for _, r := range rep.Results {
		switch r.Status {
		case upload.StatusDryRun:
			fmt.Fprintf(w, "  %s (%.1f KB)\n", r.Path, float64(r.Size)/1024)
		case upload.StatusUploaded, upload.StatusCached:
			fmt.Fprintf(w, "  %-8s %s -> %s\n", r.Status, r.Path, r.URL)
		default:
			fmt.Fprintf(w, "  %-8s %s: %s\n", r.Status, r.Path, r.Error)
		}
	}
	s := rep.Summary
	if dryRun {
		_, err := fmt.Fprintf(w, "%d images would be uploaded\n", s.Total-s.Missing)
		return err
	}
	_, err := fmt.Fprintf(w, "%d images: uploaded %d, cached %d, failed %d, missing %d\n",
		s.Total, s.Uploaded, s.Cached, s.Failed, s.Missing)
	if err == nil && rep.Written {
		_, err = fmt.Fprintf(w, "updated %s\n", rep.File)
	}
	return err
}
