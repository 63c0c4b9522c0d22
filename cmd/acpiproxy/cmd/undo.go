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
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/acpiproxy/internal/utils"
	"github.com/blacktop/acpiproxy/pkg/oc"
	"github.com/blacktop/acpiproxy/pkg/patch"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(undoCmd)
}

// undoCmd represents the undo command
var undoCmd = &cobra.Command{
	Use:           "undo <mask> <OC-folder> <DSDT.aml>",
	Short:         "Remove previously applied rename patches from config.plist",
	Args:          cobra.ExactArgs(3),
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: heredoc.Doc(`
		# Remove the patches a previous apply created
		$ acpiproxy undo _Q++ /Volumes/EFI/EFI/OC DSDT.aml
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

		descs, err := patch.Synthesize(matches, mask)
		if err != nil {
			if errors.Is(err, patch.ErrAmbiguous) {
				return fmt.Errorf("cannot rebuild unique patches for mask %s (duplicate method names?): %v", mask, err)
			}
			return err
		}

		conf, err := oc.Open(folder)
		if err != nil {
			return err
		}

		var removed int
		for _, d := range descs {
			changed, err := conf.Undo(d)
			if err != nil {
				return err
			}
			if changed {
				removed++
				utils.Indent(log.Info, 2)(d.Comment)
			} else {
				utils.Indent(log.Debug, 2)(fmt.Sprintf("not present: %s", d.Comment))
			}
		}

		if err := conf.Save(); err != nil {
			return err
		}

		log.Infof("removed %d patch(es), %d not present", removed, len(descs)-removed)

		return nil
	},
}
