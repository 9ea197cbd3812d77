package cli

import (
	"fmt"

	"github.com/ppiankov/decisync/internal/model"
	"github.com/ppiankov/decisync/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the local page body cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached page body",
	Long: `Remove the page body cache used by 'decisync sync --cache', so the next
run fetches every page from Confluence again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		if err := viper.Unmarshal(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
		// sync owns the viper binding of cache.dir, so read this flag directly
		if cmd.Flags().Changed("cache-dir") {
			cfg.Cache.Dir, _ = cmd.Flags().GetString("cache-dir")
		}
		if err := pipeline.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Printf("✓ Cleared cache: %s\n", cfg.Cache.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().String("cache-dir", model.DefaultConfig().Cache.Dir, "page body cache directory")
}
