package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/ptt-tracker/internal/core"
	"github.com/valter-silva-au/ptt-tracker/internal/storage"
)

var (
	initDriver string
	initOwner  string
	initSample bool
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a PTT tracker workspace",
	Long: `Initialize a directory as a PTT tracker workspace: a .pttconfig file,
the topic ID counter and an empty topic store.

Safe to run on an existing workspace -- files that already exist are
skipped and not overwritten. With --sample the six sample topics are
loaded into an empty store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ProjectInit == nil {
			return fmt.Errorf("project initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		result, err := ProjectInit.Init(core.InitConfig{
			BasePath: absPath,
			Driver:   initDriver,
			Owner:    initOwner,
		})
		if err != nil {
			return fmt.Errorf("initializing workspace: %w", err)
		}

		if len(result.Created) > 0 {
			fmt.Println("Created:")
			for _, p := range result.Created {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Printf("  %s\n", rel)
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Println("Skipped (already exist):")
			for _, p := range result.Skipped {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Printf("  %s\n", rel)
			}
		}

		if initSample {
			n, err := seedWorkspace(absPath, initDriver)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Println("\nTopic store is not empty; sample data skipped.")
			} else {
				fmt.Printf("\nLoaded %d sample topics.\n", n)
			}
		}

		fmt.Printf("\nWorkspace initialized at %s\n", absPath)
		return nil
	},
}

// seedWorkspace loads the sample topics into the store at basePath when it
// is empty and returns how many were added.
func seedWorkspace(basePath, driver string) (int, error) {
	store, err := storage.Open(driver, basePath)
	if err != nil {
		return 0, fmt.Errorf("opening topic store: %w", err)
	}
	defer func() { _ = store.Close() }()

	existing, err := store.GetAllTopics()
	if err != nil {
		return 0, fmt.Errorf("reading topic store: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	seeded, err := core.SeedSampleTopics(store, core.NewTopicIDGenerator(basePath, 5), Clock)
	if err != nil {
		return 0, err
	}
	return len(seeded), nil
}

func init() {
	initCmd.Flags().StringVar(&initDriver, "driver", "yaml", "Storage driver (yaml or sqlite)")
	initCmd.Flags().StringVar(&initOwner, "owner", "", "Default owner for new topics")
	initCmd.Flags().BoolVar(&initSample, "sample", false, "Load the sample topics into an empty store")
	rootCmd.AddCommand(initCmd)
}
