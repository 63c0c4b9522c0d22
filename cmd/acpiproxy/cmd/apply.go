/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/acpiproxy/internal/colors"
	"github.com/blacktop/acpiproxy/internal/utils"
	"github.com/blacktop/acpiproxy/pkg/aml"
	"github.com/blacktop/acpiproxy/pkg/oc"
	"github.com/blacktop/acpiproxy/pkg/patch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolP("interactive", "i", false, "Pick which matched methods to patch")
	applyCmd.Flags().Bool("dry-run", false, "Print the patches without touching config.plist")
	viper.BindPFlag("apply.interactive", applyCmd.Flags().Lookup("interactive"))
	viper.BindPFlag("apply.dry-run", applyCmd.Flags().Lookup("dry-run"))
}

// matchedDeclarations runs the shared scan/filter pipeline behind apply
// and undo, after checking the preconditions the core assumes: a valid
// mask, an OpenCore folder layout, a readable table and iasl in $PATH.
func matchedDeclarations(mask, folder, amlPath string) ([]aml.MethodDeclaration, error) {
	matcher, err := aml.Compile(mask)
	if err != nil {
		return nil, err
	}
	if !oc.ValidateFolder(folder) {
		return nil, fmt.Errorf("%s is not a valid OpenCore folder (needs ACPI/ and config.plist)", folder)
	}
	if _, err := os.Stat(amlPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file %s does not exist", amlPath)
	}
	if !utils.ToolExists("iasl") {
		return nil, fmt.Errorf("iasl not found in $PATH")
	}

	decls, err := aml.ScanFile(amlPath)
	if err != nil {
		return nil, err
	}
	log.Debugf("found %d method declaration(s)", len(decls))

	return aml.Filter(decls, matcher), nil
}

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:           "apply <mask> <OC-folder> <DSDT.aml>",
	Short:         "Insert rename patches into config.plist",
	Args:          cobra.ExactArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: heredoc.Doc(`
		# Rename all EC query methods
		$ acpiproxy apply _Q++ /Volumes/EFI/EFI/OC DSDT.aml

		# Choose interactively which matches get patched
		$ acpiproxy apply GPI? /Volumes/EFI/EFI/OC DSDT.aml --interactive

		# Show what would be written
		$ acpiproxy apply OSYS /Volumes/EFI/EFI/OC DSDT.aml --dry-run
	`),
	RunE: func(cmd *cobra.Command, args []string) error {

		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		mask := args[0]
		folder := filepath.Clean(args[1])
		amlPath := filepath.Clean(args[2])

		matches, err := matchedDeclarations(mask, folder, amlPath)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			log.Warnf("no methods matched mask %s", mask)
			return nil
		}

		if viper.GetBool("apply.interactive") {
			names := make([]string, len(matches))
			for i, m := range matches {
				names[i] = m.String()
			}
			var picked []int
			prompt := &survey.MultiSelect{
				Message: "Select methods to patch:",
				Options: names,
			}
			if err := survey.AskOne(prompt, &picked); err != nil {
				return err
			}
			selected := make([]aml.MethodDeclaration, 0, len(picked))
			for _, i := range picked {
				selected = append(selected, matches[i])
			}
			matches = selected
			if len(matches) == 0 {
				log.Warn("nothing selected")
				return nil
			}
		}

		descs, err := patch.Synthesize(matches, mask)
		if err != nil {
			if errors.Is(err, patch.ErrAmbiguous) {
				return fmt.Errorf("cannot build unique patches for mask %s (duplicate method names?): %v", mask, err)
			}
			return err
		}

		if viper.GetBool("apply.dry-run") {
			for _, d := range descs {
				fmt.Printf("%s\n", colors.Bold().Sprint(d.Comment))
				fmt.Printf("  find:    %s\n", colors.Faint().Sprintf("%X", d.Find))
				fmt.Printf("  replace: %s\n", colors.Faint().Sprintf("%X", d.Replace))
			}
			return nil
		}

		conf, err := oc.Open(folder)
		if err != nil {
			return err
		}

		var added int
		for _, d := range descs {
			changed, err := conf.Apply(d)
			if err != nil {
				return err
			}
			if changed {
				added++
				utils.Indent(log.Info, 2)(d.Comment)
			} else {
				utils.Indent(log.Debug, 2)(fmt.Sprintf("already present: %s", d.Comment))
			}
		}

		if err := conf.Save(); err != nil {
			return err
		}

		log.Infof("added %d patch(es), %d already present", added, len(descs)-added)

		return nil
	},
}
