package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gubarz/postmd/internal/article"
	"github.com/gubarz/postmd/internal/config"
	"github.com/gubarz/postmd/internal/ghost"
	"github.com/gubarz/postmd/internal/payload"
	"github.com/gubarz/postmd/internal/publish"
	"github.com/gubarz/postmd/internal/store"
	"github.com/gubarz/postmd/internal/ui"
	"github.com/gubarz/postmd/internal/upload"
	"github.com/gubarz/postmd/internal/workspace"
)

var ghostCmd = &cobra.Command{
	Use:   "ghost",
	Short: "Publish articles to a Ghost site",
}

var ghostPublishCmd = &cobra.Command{
	Use:   "publish <file.md>",
	Short: "Publish one article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		return runBatch(cmd, []string{abs})
	},
}

var ghostSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Publish every article in the source directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := workspace.ListArticles(config.GetSourceDir())
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no articles in %s\n", config.GetSourceDir())
			return nil
		}
		return runBatch(cmd, files)
	},
}

var ghostPickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose articles interactively, then publish them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := listEntries(cmd.Context())
		if err != nil {
			return err
		}
		items := make([]ui.Item, len(entries))
		for i, e := range entries {
			items[i] = ui.Item{Path: e.File, Title: e.Title, Slug: e.Slug, Status: e.Status, Type: e.Type}
		}
		chosen, err := ui.RunPicker(items)
		if err != nil || len(chosen) == 0 {
			return err
		}
		files := make([]string, len(chosen))
		for i, it := range chosen {
			files[i] = it.Path
		}
		return runBatch(cmd, files)
	},
}

var ghostListCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles in the source directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := listEntries(cmd.Context())
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return writeReport(cmd.OutOrStdout(), format, entries, func(w io.Writer) error {
			for _, e := range entries {
				fmt.Fprintf(w, "%-9s %-4s %-40s %s\n", e.Status, e.Type, e.Slug, e.Title)
			}
			return nil
		})
	},
}

var ghostHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent publish outcomes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(config.GetDBPath())
		if err != nil {
			return err
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := st.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return writeReport(cmd.OutOrStdout(), format, entries, func(w io.Writer) error {
			for _, e := range entries {
				detail := e.URL
				if detail == "" {
					detail = e.Message
				}
				fmt.Fprintf(w, "%s  %-7s %-40s %s\n", e.At.Local().Format("2006-01-02 15:04"), e.Action, e.Slug, detail)
			}
			return nil
		})
	},
}

var ghostPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the Admin API credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newGhostClient()
		if err != nil {
			return err
		}
		site, err := client.Ping(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "connected to %s (%s, Ghost %s)\n", site.Title, site.URL, site.Version)
		return nil
	},
}

func init() {
	ghostCmd.AddCommand(ghostPublishCmd, ghostSyncCmd, ghostPickCmd, ghostListCmd, ghostHistoryCmd, ghostPingCmd)

	for _, c := range []*cobra.Command{ghostPublishCmd, ghostSyncCmd, ghostPickCmd} {
		c.Flags().String("status", "", "Override status: draft or published")
		c.Flags().Bool("force", false, "Update articles that already exist")
		c.Flags().Bool("dry-run", false, "Show what would be published without calling the API")
		c.Flags().Bool("move", false, "Move published articles to target_dir")
		c.Flags().Bool("upload", false, "Upload local images before publishing")
	}
	ghostListCmd.Flags().String("format", "text", "Output format: text, json, yaml")
	ghostHistoryCmd.Flags().String("format", "text", "Output format: text, json, yaml")
	ghostHistoryCmd.Flags().Int("limit", 20, "Number of entries to show")
}

// ============================================================================
// Wiring
// ============================================================================

func newGhostClient() (*ghost.Client, error) {
	url, key, err := config.GhostCredentials()
	if err != nil {
		return nil, err
	}
	return ghost.NewClient(url, key, ghost.WithTimeout(config.C.Ghost.Timeout), ghost.WithLogger(appLog))
}

func payloadOptions(status string) payload.Options {
	d := config.C.Defaults
	return payload.Options{
		Defaults: payload.Defaults{
			Status:     d.Status,
			Visibility: d.Visibility,
			Type:       d.Type,
			Featured:   d.Featured,
			Category:   d.Category,
			Tags:       d.Tags,
			Tiers:      d.Tiers,
		},
		DefaultFeatureImage: config.C.Ghost.DefaultFeatureImage,
		AssetDomainFrom:     config.C.Ghost.AssetDomainFrom,
		AssetDomainTo:       config.C.Ghost.AssetDomainTo,
		Status:              status,
		KnownTags:           config.C.AvailableTags,
		KnownCategories:     config.C.AvailableCategories,
	}
}

// newProcessor builds the image upload pipeline from config. The returned
// close func releases the cache.
func newProcessor(kind, api string, useCache bool) (*upload.Processor, func(), error) {
	if kind == "" {
		kind = config.C.Upload.Uploader
	}
	if api == "" {
		api = config.C.Upload.API
	}
	up, err := upload.New(kind, api, nil)
	if err != nil {
		return nil, nil, err
	}

	var cache upload.Cache
	closeFn := func() {}
	if useCache {
		st, err := store.Open(config.GetDBPath())
		if err != nil {
			appLog.Warn("upload cache unavailable", "error", err)
		} else {
			cache = st
			closeFn = func() { st.Close() }
		}
	}

	p := upload.NewProcessor(up, kind, cache, newLimiter(config.C.Upload.Delay))
	p.Log = appLog
	return p, closeFn, nil
}

// runBatch publishes files with the flags of cmd and prints a summary
func runBatch(cmd *cobra.Command, files []string) error {
	status, _ := cmd.Flags().GetString("status")
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	move, _ := cmd.Flags().GetBool("move")
	withUpload, _ := cmd.Flags().GetBool("upload")

	if status != "" && status != payload.StatusDraft && status != payload.StatusPublished {
		return fmt.Errorf("invalid status %q (draft, published)", status)
	}

	var pub publish.Publisher
	client, err := newGhostClient()
	switch {
	case err == nil:
		pub = client
	case dryRun && errors.Is(err, config.ErrMissingCredentials):
		appLog.Debug("dry run without credentials")
	default:
		return err
	}

	rec := publish.NewReconciler(pub, newLimiter(config.C.Ghost.RateLimit))
	rec.Force = force
	rec.DryRun = dryRun

	runner := &publish.Runner{
		Reconciler: rec,
		Log:        appLog,
	}

	opts := payloadOptions(status)
	var proc *upload.Processor
	if withUpload {
		p, closeFn, err := newProcessor("", "", config.C.Upload.Cache)
		if err != nil {
			return err
		}
		defer closeFn()
		p.DryRun = dryRun
		proc = p
	}
	runner.Prepare = func(ctx context.Context, path string) (payload.Payload, error) {
		return prepare(ctx, path, opts, proc)
	}

	if move && !dryRun {
		target := config.GetTargetDir()
		if target == "" {
			return errors.New("--move needs target_dir in the config")
		}
		runner.Archive = func(path, title string) (string, error) {
			return workspace.Archive(path, target, title)
		}
	}

	if !dryRun {
		st, err := store.Open(config.GetDBPath())
		if err != nil {
			appLog.Warn("publish history unavailable", "error", err)
		} else {
			defer st.Close()
			runner.Recorder = st
		}
	}

	sum := runner.Run(cmd.Context(), files)
	fmt.Fprintln(cmd.OutOrStdout(), ui.RenderSummary(sum))
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d articles failed", sum.Failed, sum.Total())
	}
	return nil
}

// prepare loads a file into a payload, uploading its images first when proc is set
func prepare(ctx context.Context, path string, opts payload.Options, proc *upload.Processor) (payload.Payload, error) {
	doc, err := article.Load(path)
	if err != nil {
		return payload.Payload{}, err
	}
	p := payload.Build(doc, opts)
	if p.Title == "" {
		return p, errors.New("article has no title")
	}

	if proc != nil {
		body, cover, results := proc.Localize(ctx, doc.Dir(), p.Body, p.FeatureImage)
		for _, r := range results {
			if r.Status == upload.StatusFailed || r.Status == upload.StatusMissing {
				p.Warnings = append(p.Warnings, fmt.Sprintf("image %s %s", r.Path, r.Status))
			}
		}
		// Uploaded URLs get the same domain swap as the rest of the body.
		p.Body = payload.ReplaceAssetDomain(body, opts.AssetDomainFrom, opts.AssetDomainTo)
		p.FeatureImage = cover
	}
	return p, nil
}

// listEntry is one row of ghost list
type listEntry struct {
	File   string `json:"file" yaml:"file"`
	Title  string `json:"title" yaml:"title"`
	Slug   string `json:"slug" yaml:"slug"`
	Status string `json:"status" yaml:"status"`
	Type   string `json:"type" yaml:"type"`
}

func listEntries(ctx context.Context) ([]listEntry, error) {
	files, err := workspace.ListArticles(config.GetSourceDir())
	if err != nil {
		return nil, err
	}
	opts := payloadOptions("")
	entries := make([]listEntry, 0, len(files))
	for _, f := range files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		doc, err := article.Load(f)
		if err != nil {
			appLog.Warning(f, err.Error())
			continue
		}
		p := payload.Build(doc, opts)
		entries = append(entries, listEntry{File: f, Title: p.Title, Slug: p.Slug, Status: p.Status, Type: string(p.Type)})
	}
	return entries, nil
}
