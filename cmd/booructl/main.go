package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"lightbooru/internal/dupes"
	"lightbooru/internal/library"
	"lightbooru/internal/overlay"
	"lightbooru/internal/startup"
)

var rootFlags struct {
	roots  []string
	asJSON bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "booructl",
		Short:         "Inspect and edit a local media library",
		Long:          "booructl scans media libraries produced by download tools, merges sidecar metadata with user edits and answers queries without a running server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVarP(&rootFlags.roots, "root", "r", nil, "library root directory (repeatable)")
	cmd.PersistentFlags().BoolVar(&rootFlags.asJSON, "json", false, "emit JSON instead of text")

	cmd.AddCommand(
		newSearchCmd(),
		newInfoCmd(),
		newEditCmd(),
		newDupesCmd(),
		newAliasCmd(),
		newVersionCmd(),
	)
	return cmd
}

// buildSnapshot scans the configured roots once, for commands that need a
// full view of the library.
func buildSnapshot(ctx context.Context) (*library.Library, *library.Snapshot, error) {
	if len(rootFlags.roots) == 0 {
		return nil, nil, fmt.Errorf("at least one --root is required")
	}
	lib := library.New(rootFlags.roots)
	snap, err := lib.Rebuild(ctx)
	if err != nil {
		return nil, nil, err
	}
	return lib, snap, nil
}

// inspectFile merges one media file in place, without scanning the library.
func inspectFile(path string) (library.ViewRecord, error) {
	return library.InspectFile(path)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSearchCmd() *cobra.Command {
	var (
		tags      []string
		tagsAny   []string
		tagsNone  []string
		platform  string
		author    string
		text      string
		sensitive string
		sortField string
		order     string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, snap, err := buildSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			filter := library.Filter{
				TagsAll:  tags,
				TagsAny:  tagsAny,
				TagsNone: tagsNone,
				Platform: platform,
				Author:   author,
				Text:     text,
				Aliases:  lib.Aliases(),
			}
			switch strings.ToLower(sensitive) {
			case "":
			case "true", "yes":
				v := true
				filter.Sensitive = &v
			case "false", "no":
				v := false
				filter.Sensitive = &v
			default:
				return fmt.Errorf("invalid --sensitive value %q", sensitive)
			}

			records, total := snap.Query(filter,
				library.Sort{Field: library.SortField(sortField), Order: library.SortOrder(order)},
				library.Page{Limit: limit})

			if rootFlags.asJSON {
				return printJSON(records)
			}
			for _, rec := range records {
				line := rec.FilePath
				if len(rec.Tags) > 0 {
					line += "  [" + strings.Join(rec.Tags, " ") + "]"
				}
				fmt.Println(line)
			}
			fmt.Printf("%d of %d item(s)\n", len(records), total)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "require this tag (repeatable)")
	cmd.Flags().StringSliceVar(&tagsAny, "any-tag", nil, "require at least one of these tags")
	cmd.Flags().StringSliceVar(&tagsNone, "not-tag", nil, "exclude items with this tag")
	cmd.Flags().StringVar(&platform, "platform", "", "filter by source platform")
	cmd.Flags().StringVar(&author, "author", "", "filter by author name")
	cmd.Flags().StringVarP(&text, "query", "q", "", "free-text search over titles, descriptions and notes")
	cmd.Flags().StringVar(&sensitive, "sensitive", "", "filter by sensitivity (true/false)")
	cmd.Flags().StringVar(&sortField, "sort", "", "sort field: posted_at, score, file_size")
	cmd.Flags().StringVar(&order, "order", "", "sort order: asc, desc")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum results (0 = unlimited)")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <media-file>",
		Short: "Show the merged record for one media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := inspectFile(args[0])
			if err != nil {
				return err
			}
			if rootFlags.asJSON {
				return printJSON(rec)
			}

			fmt.Printf("ID:        %s\n", rec.ID)
			fmt.Printf("File:      %s (%d bytes)\n", rec.FilePath, rec.FileSize)
			if rec.SourcePlatform != "" {
				fmt.Printf("Platform:  %s (post %s)\n", rec.SourcePlatform, rec.SourcePostID)
			}
			if rec.AuthorName != "" {
				fmt.Printf("Author:    %s\n", rec.AuthorName)
			}
			if rec.Title != "" {
				fmt.Printf("Title:     %s\n", rec.Title)
			}
			if !rec.PostedAt.IsZero() {
				fmt.Printf("Posted:    %s\n", rec.PostedAt.Format("2006-01-02 15:04:05"))
			}
			if rec.PostURL != "" {
				fmt.Printf("URL:       %s\n", rec.PostURL)
			}
			fmt.Printf("Tags:      %s\n", strings.Join(rec.Tags, " "))
			fmt.Printf("Sensitive: %v\n", rec.Sensitive)
			if rec.Notes != "" {
				fmt.Printf("Notes:     %s\n", rec.Notes)
			}
			if rec.HasOverlay {
				fmt.Println("Edited:    yes")
			}
			return nil
		},
	}
}

func newEditCmd() *cobra.Command {
	var (
		addTags        []string
		removeTags     []string
		sensitive      string
		clearSensitive bool
		notes          string
		notesSet       bool
	)

	cmd := &cobra.Command{
		Use:   "edit <media-file>",
		Short: "Apply an edit to one media file's overlay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta := overlay.Delta{
				AddTags:        addTags,
				RemoveTags:     removeTags,
				ClearSensitive: clearSensitive,
			}
			switch strings.ToLower(sensitive) {
			case "":
			case "true", "yes":
				v := true
				delta.SetSensitive = &v
			case "false", "no":
				v := false
				delta.SetSensitive = &v
			default:
				return fmt.Errorf("invalid --sensitive value %q", sensitive)
			}
			if notesSet = cmd.Flags().Changed("notes"); notesSet {
				delta.Notes = &notes
			}
			if delta.IsZero() {
				return fmt.Errorf("nothing to change; pass --add-tag, --remove-tag, --sensitive, --clear-sensitive or --notes")
			}

			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("media file: %w", err)
			}
			if _, err := overlay.ApplyToFile(args[0], delta); err != nil {
				return err
			}

			rec, err := inspectFile(args[0])
			if err != nil {
				return err
			}
			if rootFlags.asJSON {
				return printJSON(rec)
			}
			fmt.Printf("Tags:      %s\n", strings.Join(rec.Tags, " "))
			fmt.Printf("Sensitive: %v\n", rec.Sensitive)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&addTags, "add-tag", nil, "tag to add (repeatable)")
	cmd.Flags().StringSliceVar(&removeTags, "remove-tag", nil, "tag to remove (repeatable)")
	cmd.Flags().StringVar(&sensitive, "sensitive", "", "set the sensitivity override (true/false)")
	cmd.Flags().BoolVar(&clearSensitive, "clear-sensitive", false, "drop the sensitivity override")
	cmd.Flags().StringVar(&notes, "notes", "", "replace the notes text")
	return cmd
}

func newDupesCmd() *cobra.Command {
	var (
		algorithm   string
		threshold   int
		skipSameDir bool
	)

	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find near-duplicate images by perceptual hash",
		RunE: func(cmd *cobra.Command, args []string) error {
			algo, err := dupes.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}

			_, snap, err := buildSnapshot(cmd.Context())
			if err != nil {
				return err
			}

			var inputs []dupes.Input
			for _, rec := range snap.Records() {
				inputs = append(inputs, dupes.Input{ID: rec.ID, Path: rec.FilePath})
			}

			report, err := dupes.Find(cmd.Context(), inputs, dupes.Options{
				Algorithm:   algo,
				Threshold:   threshold,
				SkipSameDir: skipSameDir,
			})
			if err != nil {
				return err
			}

			if rootFlags.asJSON {
				return printJSON(report)
			}
			for i, cluster := range report.Clusters {
				fmt.Printf("cluster %d (%d items):\n", i+1, len(cluster.Items))
				for _, id := range cluster.Items {
					if rec, ok := snap.Get(id); ok {
						fmt.Printf("  %s\n", rec.FilePath)
					}
				}
			}
			fmt.Printf("%d cluster(s) among %d hashed image(s)\n", len(report.Clusters), report.Hashed)
			for _, hashErr := range report.Errors {
				fmt.Fprintf(os.Stderr, "warning: %s: %s\n", hashErr.Path, hashErr.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&algorithm, "algorithm", "", "hash algorithm: ahash, dhash, phash (default phash)")
	cmd.Flags().IntVar(&threshold, "threshold", dupes.DefaultThreshold, "maximum Hamming distance")
	cmd.Flags().BoolVar(&skipSameDir, "skip-same-dir", false, "ignore matches within the same directory")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := startup.GetBuildInfo()
			if rootFlags.asJSON {
				return printJSON(info)
			}
			fmt.Printf("booructl %s (%s, %s, %s/%s)\n",
				info.Version, info.Commit, info.GoVersion, info.OS, info.Arch)
			return nil
		},
	}
}
