package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/subtrack-cli/subtrack/internal/cli"
	"github.com/subtrack-cli/subtrack/internal/model"
)

var (
	flagCatColor string
	flagCatIcon  string
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cat"},
	Short:   "Manage categories",
	RunE:    runCategoriesList,
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesAdd,
}

var categoriesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a category (subscriptions keep running, uncategorized)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesRemove,
}

var categoriesReorderCmd = &cobra.Command{
	Use:   "reorder <id>...",
	Short: "Reorder categories; listed ids get positions 0..n-1",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCategoriesReorder,
}

func init() {
	categoriesAddCmd.Flags().StringVar(&flagCatColor, "color", "#3AA99F", "Display color (hex)")
	categoriesAddCmd.Flags().StringVar(&flagCatIcon, "icon", "", "Icon key")
	categoriesCmd.AddCommand(categoriesAddCmd)
	categoriesCmd.AddCommand(categoriesRemoveCmd)
	categoriesCmd.AddCommand(categoriesReorderCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runCategoriesList(_ *cobra.Command, _ []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	cats := env.service.Categories()
	if len(cats) == 0 {
		fmt.Println("\n  No categories yet.")
		return nil
	}

	table := cli.Table{
		Headers: []string{"Name", "Order", "Color", "ID"},
	}
	for _, c := range cats {
		table.Rows = append(table.Rows, []string{
			c.Name,
			fmt.Sprintf("%d", c.SortOrder),
			c.Color,
			c.ID,
		})
	}
	fmt.Println()
	fmt.Println(table.Render())
	return nil
}

func runCategoriesAdd(_ *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	cat, err := env.service.AddCategory(model.Category{
		Name:  args[0],
		Color: flagCatColor,
		Icon:  flagCatIcon,
	})
	if err != nil {
		return err
	}
	fmt.Printf("  Added category %s  id=%s\n", cat.Name, cat.ID)
	return nil
}

func runCategoriesRemove(_ *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.service.DeleteCategory(args[0]); err != nil {
		return err
	}
	fmt.Printf("  Removed category %s\n", args[0])
	return nil
}

func runCategoriesReorder(_ *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.service.ReorderCategories(args); err != nil {
		return err
	}
	fmt.Println("  Reordered.")
	return nil
}
