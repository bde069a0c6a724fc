package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vesselpower/infra/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect saved vessel snapshots",
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [vessel]",
	Short: "Print the latest snapshot of a vessel, or list saved vessels",
	Args:  cobra.MaximumNArgs(1),
	RunE:  showSnapshot,
}

func init() {
	snapshotCmd.AddCommand(snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := snapshot.Open(cfg.Snapshot)
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("snapshot backend is disabled")
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var out any
	if len(args) == 1 {
		snap, err := store.Load(ctx, args[0])
		if err != nil {
			return fmt.Errorf("load snapshot %s: %w", args[0], err)
		}
		out = snap
	} else {
		lister, ok := store.(snapshot.Lister)
		if !ok {
			return fmt.Errorf("backend %s cannot list vessels", cfg.Snapshot.Backend)
		}
		ids, err := lister.Vessels(ctx)
		if err != nil {
			return fmt.Errorf("list vessels: %w", err)
		}
		out = ids
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
