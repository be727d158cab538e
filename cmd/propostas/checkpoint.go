package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/proposal-desk/internal/cli"
	"github.com/Veraticus/proposal-desk/internal/storage"
	"github.com/spf13/cobra"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete snapshots of the local database.

A checkpoint is taken automatically before every catalog sync.`,
		Example: `  # Create a checkpoint before cleaning up users
  propostas checkpoint create --tag pre-cleanup

  # List all checkpoints
  propostas checkpoint list

  # Restore from a checkpoint
  propostas checkpoint restore pre-cleanup`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

// withCheckpoints opens the local database and hands its checkpoint manager to fn.
func withCheckpoints(ctx context.Context, fn func(*storage.CheckpointManager) error) error {
	db, err := openSQLite(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	manager, err := db.NewCheckpointManager()
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	return fn(manager)
}

func findCheckpoint(ctx context.Context, manager *storage.CheckpointManager, id string) (*storage.CheckpointInfo, error) {
	checkpoints, err := manager.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	for i := range checkpoints {
		if checkpoints[i].ID == id {
			return &checkpoints[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrCheckpointNotFound, id)
}

// confirm asks on stdin unless force is set.
func confirm(ctx context.Context, force bool, prompt string) (bool, error) {
	if force {
		return true, nil
	}
	return cli.NewNonBlockingReader(os.Stdin).Confirm(ctx, os.Stdout, prompt)
}

func createCheckpointCmd() *cobra.Command {
	var tag string
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withCheckpoints(ctx, func(manager *storage.CheckpointManager) error {
				info, err := manager.Create(ctx, tag, description)
				if err != nil {
					return fmt.Errorf("failed to create checkpoint: %w", err)
				}

				cmd.Printf("%s Created checkpoint %s (%s)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(info.ID),
					formatFileSize(info.FileSize))
				if info.Description != "" {
					cmd.Printf("  Description: %s\n", info.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "Checkpoint tag/name (auto-generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description of the checkpoint")

	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withCheckpoints(ctx, func(manager *storage.CheckpointManager) error {
				checkpoints, err := manager.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}
				if len(checkpoints) == 0 {
					cmd.Println(cli.SubtitleStyle.Render("No checkpoints found."))
					return nil
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, strings.Join([]string{
					cli.TableHeaderStyle.Render("NAME"),
					cli.TableHeaderStyle.Render("CREATED"),
					cli.TableHeaderStyle.Render("SIZE"),
					cli.TableHeaderStyle.Render("PROPOSALS"),
					cli.TableHeaderStyle.Render("TYPE"),
				}, "\t"))

				for _, cp := range checkpoints {
					typeLabel := "manual"
					if cp.IsAuto {
						typeLabel = "auto"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
						cli.InfoStyle.Render(cp.ID),
						formatRelativeTime(cp.CreatedAt, time.Now()),
						formatFileSize(cp.FileSize),
						cp.Proposals(),
						cli.SubtleStyle.Render(typeLabel),
					)
				}
				return w.Flush()
			})
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore database from a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			return withCheckpoints(ctx, func(manager *storage.CheckpointManager) error {
				info, err := findCheckpoint(ctx, manager, id)
				if err != nil {
					return err
				}

				cmd.Printf("%s This will replace your current database with checkpoint %s.\n",
					cli.WarningStyle.Render(cli.WarningIcon),
					cli.InfoStyle.Render(id))
				cmd.Printf("  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
				if info.Description != "" {
					cmd.Printf("  Description: %s\n", info.Description)
				}

				ok, err := confirm(ctx, force, "Continue?")
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println(cli.SubtitleStyle.Render("Restore cancelled."))
					return nil
				}

				if err := manager.Restore(ctx, id); err != nil {
					return fmt.Errorf("failed to restore checkpoint: %w", err)
				}

				cmd.Printf("%s Restored from checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			return withCheckpoints(ctx, func(manager *storage.CheckpointManager) error {
				info, err := findCheckpoint(ctx, manager, id)
				if err != nil {
					return err
				}

				cmd.Printf("%s This will permanently delete checkpoint %s (%s).\n",
					cli.WarningStyle.Render(cli.WarningIcon),
					cli.InfoStyle.Render(id),
					formatFileSize(info.FileSize))

				ok, err := confirm(ctx, force, "Continue?")
				if err != nil {
					return err
				}
				if !ok {
					cmd.Println(cli.SubtitleStyle.Render("Deletion cancelled."))
					return nil
				}

				if err := manager.Delete(ctx, id); err != nil {
					return fmt.Errorf("failed to delete checkpoint: %w", err)
				}

				cmd.Printf("%s Deleted checkpoint %s\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(id))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		if m := int(d.Minutes()); m != 1 {
			return fmt.Sprintf("%d minutes ago", m)
		}
		return "1 minute ago"
	case d < 24*time.Hour:
		if h := int(d.Hours()); h != 1 {
			return fmt.Sprintf("%d hours ago", h)
		}
		return "1 hour ago"
	case d < 7*24*time.Hour:
		if days := int(d.Hours() / 24); days != 1 {
			return fmt.Sprintf("%d days ago", days)
		}
		return "yesterday"
	}
	return t.Format("2006-01-02 15:04")
}
