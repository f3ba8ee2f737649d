// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-engine/internal/boilerplate"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate boilerplate rule sets",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the builtin rule sets",
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, err := boilerplate.Builtin()
		if err != nil {
			return err
		}
		for _, s := range sets {
			lang := s.Language
			if lang == "" {
				lang = "any"
			}
			fmt.Printf("%-12s  %-4s  %3d rules  %s\n", s.Ref(), lang, len(s.Rules), s.Description)
		}
		return nil
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate rule-set files against the rule-set schema",
	Long: `Validate checks each YAML rule-set file against the rule-set schema and
compiles its patterns. Every problem found is reported; the command fails
if any file is invalid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRulesValidate,
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	invalid := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("failed  %s: %v\n", path, err)
			invalid++
			continue
		}
		if problems := boilerplate.ValidateRuleSet(data); len(problems) > 0 {
			fmt.Printf("invalid %s\n", path)
			for _, p := range problems {
				fmt.Printf("  - %s\n", p)
			}
			invalid++
			continue
		}
		set, err := boilerplate.ParseRuleSet(data)
		if err != nil {
			fmt.Printf("invalid %s: %v\n", path, err)
			invalid++
			continue
		}
		fmt.Printf("ok      %s (%s, %d rules)\n", path, set.Ref(), len(set.Rules))
	}
	if invalid > 0 {
		return fmt.Errorf("%d rule set(s) invalid", invalid)
	}
	return nil
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesValidateCmd)

	rootCmd.AddCommand(rulesCmd)
}
