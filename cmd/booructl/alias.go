package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lightbooru/internal/alias"
)

func newAliasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage tag alias groups",
		Long:  "Alias groups make equivalent tags interchangeable in searches. Groups live in an alias.json file at each library root.",
	}
	cmd.AddCommand(newAliasListCmd(), newAliasAddCmd(), newAliasRemoveCmd())
	return cmd
}

// singleRoot enforces exactly one --root for commands that write alias.json.
func singleRoot() (string, error) {
	if len(rootFlags.roots) != 1 {
		return "", fmt.Errorf("exactly one --root is required")
	}
	return rootFlags.roots[0], nil
}

func newAliasListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List alias groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := singleRoot()
			if err != nil {
				return err
			}
			groups, err := alias.LoadGroupsFromRoot(root)
			if err != nil {
				return err
			}
			if rootFlags.asJSON {
				return printJSON(groups)
			}
			if len(groups) == 0 {
				fmt.Println("no alias groups defined")
				return nil
			}
			for _, group := range groups {
				fmt.Println(strings.Join(group, " = "))
			}
			return nil
		},
	}
}

func newAliasAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <term> <term>...",
		Short: "Declare two or more terms as aliases of each other",
		Long:  "Adds the given terms to one group. Groups sharing a term merge transitively.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := singleRoot()
			if err != nil {
				return err
			}
			groups, err := alias.LoadGroupsFromRoot(root)
			if err != nil {
				return err
			}

			merged, changed := alias.MergeTerms(groups, args)
			if !changed {
				fmt.Println("no change: terms already aliased")
				return nil
			}
			if err := alias.SaveGroupsToRoot(root, merged); err != nil {
				return err
			}
			fmt.Printf("aliased: %s\n", strings.Join(alias.NormalizeTerms(args), " = "))
			return nil
		},
	}
}

func newAliasRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <term>...",
		Short: "Remove terms from their alias groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := singleRoot()
			if err != nil {
				return err
			}
			groups, err := alias.LoadGroupsFromRoot(root)
			if err != nil {
				return err
			}

			remaining, changed := alias.RemoveTerms(groups, args)
			if !changed {
				fmt.Println("no change: terms were not aliased")
				return nil
			}
			if err := alias.SaveGroupsToRoot(root, remaining); err != nil {
				return err
			}
			fmt.Printf("removed: %s\n", strings.Join(alias.NormalizeTerms(args), " "))
			return nil
		},
	}
}
