package main

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"arcana_lab/internal/catalog"
	"arcana_lab/internal/commons"
	"arcana_lab/internal/repository"
	"arcana_lab/internal/service"
)

// printJSON は結果を 1 行の JSON で標準出力に書きます。
func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := repository.Migrate(a.db); err != nil {
				return err
			}
			a.logger.Info("Database migrated")
			return nil
		},
	}
}

func loadDeck(path string) (*catalog.Deck, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.LoadFile(path)
}

func newSeedCmd(a *app) *cobra.Command {
	var deckPath string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the 78-card deck and backfill fallback image URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := loadDeck(deckPath)
			if err != nil {
				return err
			}
			res, err := a.catalog.Seed(cmd.Context(), deck)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&deckPath, "deck", "", "deck TOML file (defaults to the embedded Rider-Waite-Smith deck)")
	return cmd
}

func newFillCmd(a *app) *cobra.Command {
	var deckPath string
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Copy authored meanings onto cards still holding placeholder text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			meanings, err := catalog.LoadFile(deckPath)
			if err != nil {
				return err
			}
			res, err := a.catalog.Fill(cmd.Context(), meanings)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&deckPath, "deck", "", "TOML file with [[meaning]] entries")
	_ = cmd.MarkFlagRequired("deck")
	return cmd
}

func newBackfillReversedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-reversed",
		Short: "Replace blank reversed points with a dash",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.catalog.BackfillReversed(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}

func newSyncImagesCmd(a *app) *cobra.Command {
	var publicDir string
	cmd := &cobra.Command{
		Use:   "sync-images",
		Short: "Point card image URLs at files under <public-dir>/cards/{thumb,full}",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.catalog.SyncImages(cmd.Context(), publicDir)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&publicDir, "public-dir", "public", "static asset directory")
	return cmd
}

func newImportImagesCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "import-images",
		Short: "Resolve Rider-Waite-Smith scans on Wikimedia Commons for every card",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := a.cfg.Commons
			client := commons.NewClient(cc.Endpoint, cc.UserAgent)

			start := time.Now()
			res, err := a.catalog.ImportImages(cmd.Context(), client, service.ImportImagesOptions{
				ThumbWidth:  cc.ThumbWidth,
				FullWidth:   cc.FullWidth,
				Concurrency: cc.Concurrency,
				Force:       force,
			})
			if err != nil {
				return err
			}
			a.logger.Info("Import finished", "elapsed", time.Since(start).String())
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "re-resolve cards that already have external image URLs")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "check [all|total|meaningFilled|filled]",
		Short:     "Print catalog fill statistics",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"all", "total", "meaningFilled", "filled"},
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.catalog.Check(cmd.Context())
			if err != nil {
				return err
			}
			mode := "all"
			if len(args) == 1 {
				mode = args[0]
			}
			switch mode {
			case "total":
				fmt.Fprintln(cmd.OutOrStdout(), stats.Total)
			case "meaningFilled":
				fmt.Fprintln(cmd.OutOrStdout(), stats.MeaningFilled)
			case "filled":
				fmt.Fprintln(cmd.OutOrStdout(), stats.Filled)
			default:
				return printJSON(cmd, stats)
			}
			return nil
		},
	}
}
