package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"script-toolbox/internal/config"
	"script-toolbox/internal/discovery"
	"script-toolbox/internal/order"
	"script-toolbox/internal/prefs"
)

type rootOptions struct {
	configPath string
	config     *config.Config
	store      *prefs.Store
}

func (r *rootOptions) prepare() error {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return err
	}
	store, err := prefs.Open(cfg.ProfilePath)
	if err != nil {
		return err
	}
	r.config = cfg
	r.store = store
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "toolboxctl",
		Short:         "Inspect and edit the script toolbox layout",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultConfig, _ := config.DefaultPath()
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "path to config.yaml (default $TOOLBOX_HOME/config.yaml)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return opts.prepare()
	}

	rootCmd.AddCommand(newScriptsCmd(opts))
	rootCmd.AddCommand(newOrderCmd(opts))
	rootCmd.AddCommand(newCategoryCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

func newScriptsCmd(root *rootOptions) *cobra.Command {
	scriptsCmd := &cobra.Command{
		Use:   "scripts",
		Short: "Script operations",
	}
	scriptsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List discovered scripts in display order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scanner, err := discovery.NewScanner(root.config.ScriptsDir, root.store)
			if err != nil {
				return err
			}
			scripts, err := scanner.Scan()
			if err != nil {
				return err
			}
			saved, err := root.store.ScriptOrder(cmd.Context())
			if err != nil {
				return err
			}
			printScripts(cmd.OutOrStdout(), discovery.SortByOrder(scripts, saved))
			return nil
		},
	})
	return scriptsCmd
}

func printScripts(w io.Writer, scripts []discovery.Script) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY")
	for _, s := range scripts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, s.Name, s.Category)
	}
	tw.Flush()
}

func parseKind(args []string) (order.Kind, error) {
	if len(args) == 0 {
		return order.KindScripts, nil
	}
	kind := order.Kind(args[0])
	if !kind.Valid() {
		return "", fmt.Errorf("unknown order kind %q (want scripts or categories)", args[0])
	}
	return kind, nil
}

func loadOrder(ctx context.Context, store *prefs.Store, kind order.Kind) ([]string, error) {
	if kind == order.KindCategories {
		return store.CategoryOrder(ctx)
	}
	return store.ScriptOrder(ctx)
}

func saveOrder(ctx context.Context, store *prefs.Store, kind order.Kind, ids []string) error {
	if kind == order.KindCategories {
		return store.SaveCategoryOrder(ctx, ids)
	}
	return store.SaveScriptOrder(ctx, ids)
}

func newOrderCmd(root *rootOptions) *cobra.Command {
	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Saved order operations",
	}

	orderCmd.AddCommand(&cobra.Command{
		Use:   "show [scripts|categories]",
		Short: "Print a saved order, one id per line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args)
			if err != nil {
				return err
			}
			ids, err := loadOrder(cmd.Context(), root.store, kind)
			if err != nil {
				return err
			}
			if kind == order.KindCategories {
				ids = append([]string{order.PinnedCategory}, ids...)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	})

	var before string
	moveCmd := &cobra.Command{
		Use:   "move <scripts|categories> <id>",
		Short: "Move an id in front of another, or to the end",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[:1])
			if err != nil {
				return err
			}
			ids, err := loadOrder(cmd.Context(), root.store, kind)
			if err != nil {
				return err
			}
			c := order.New(kind, ids)
			if !c.Move(args[1], before) {
				fmt.Fprintln(cmd.OutOrStdout(), "order unchanged")
				return nil
			}
			return saveOrder(cmd.Context(), root.store, kind, c.Current())
		},
	}
	moveCmd.Flags().StringVar(&before, "before", "", "id to place the moved id in front of (default: end)")
	orderCmd.AddCommand(moveCmd)

	orderCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear both saved orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := root.store.ResetLayout(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared layout in %s\n", root.store.Path())
			return nil
		},
	})
	return orderCmd
}

func newCategoryCmd(root *rootOptions) *cobra.Command {
	categoryCmd := &cobra.Command{
		Use:   "category",
		Short: "Custom category operations",
	}
	categoryCmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Create an empty custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, err := root.store.AddCustomCategory(args[0])
			if err != nil {
				return err
			}
			if !added {
				return fmt.Errorf("category %q already exists", args[0])
			}
			return nil
		},
	})
	categoryCmd.AddCommand(&cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove a custom category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := root.store.RemoveCustomCategory(args[0])
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("no custom category %q", args[0])
			}
			return nil
		},
	})
	return categoryCmd
}

func newConfigCmd(root *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "config.yaml operations",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml with the resolved defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(root.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", root.configPath)
			}
			if err := root.config.Save(root.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", root.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config.yaml")
	configCmd.AddCommand(initCmd)
	return configCmd
}
