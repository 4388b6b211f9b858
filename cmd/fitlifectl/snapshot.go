package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/2beens/fitlife/internal/config"
	"github.com/2beens/fitlife/internal/snapshot"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func snapshotCmd(opts *rootOptions) *cobra.Command {
	var workoutID, userID string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or clear a stored workout session snapshot",
	}
	cmd.PersistentFlags().StringVar(&workoutID, "workout", "", "workout id")
	cmd.PersistentFlags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkPersistentFlagRequired("workout")
	_ = cmd.MarkPersistentFlagRequired("user")

	withStore := func(run func(ctx context.Context, store snapshot.Store, key string, out io.Writer) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openSnapshotStore(opts.cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					log.Warnf("close snapshot store: %s", err)
				}
			}()
			return run(cmd.Context(), store, snapshot.Key(workoutID, userID), cmd.OutOrStdout())
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the snapshot as indented JSON",
		Args:  cobra.NoArgs,
		RunE:  withStore(showSnapshot),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the snapshot",
		Args:  cobra.NoArgs,
		RunE: withStore(func(ctx context.Context, store snapshot.Store, key string, out io.Writer) error {
			if err := store.Remove(ctx, key); err != nil {
				return err
			}
			fmt.Fprintf(out, "removed %s\n", key)
			return nil
		}),
	})

	return cmd
}

func showSnapshot(ctx context.Context, store snapshot.Store, key string, out io.Writer) error {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no snapshot stored under %s", key)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(raw), "", "  "); err != nil {
		return fmt.Errorf("snapshot %s is not valid json: %w", key, err)
	}
	pretty.WriteByte('\n')
	_, err = pretty.WriteTo(out)
	return err
}

// openSnapshotStore opens the configured store. The returned close func
// also closes the redis client, if one was created.
func openSnapshotStore(cfg *config.Config) (snapshot.Store, func() error, error) {
	if cfg.SnapshotStore != config.SnapshotStoreRedis {
		return snapshot.Open(cfg, nil)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: os.Getenv("FITLIFE_REDIS_PASS"),
	})
	store, closeStore, err := snapshot.Open(cfg, rdb)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return store, func() error {
		storeErr := closeStore()
		if err := rdb.Close(); err != nil {
			return err
		}
		return storeErr
	}, nil
}
