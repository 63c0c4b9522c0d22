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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/apex/log"
	"github.com/blacktop/acpiproxy/internal/colors"
	"github.com/blacktop/acpiproxy/internal/utils"
	"github.com/blacktop/acpiproxy/pkg/aml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolP("json", "j", false, "Output matches as JSON")
	scanCmd.Flags().BoolP("dsl", "d", false, "Also disassemble the table with iasl")
	viper.BindPFlag("scan.json", scanCmd.Flags().Lookup("json"))
	viper.BindPFlag("scan.dsl", scanCmd.Flags().Lookup("dsl"))
	scanCmd.MarkZshCompPositionalArgumentFile(2)
}

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:           "scan <mask> <DSDT.aml>",
	Short:         "List method declarations matching a wildcard mask",
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	Example: heredoc.Doc(`
		# List all EC query methods
		$ acpiproxy scan _Q++ DSDT.aml

		# Dump matches as JSON
		$ acpiproxy scan GPI0 DSDT.aml --json | jq .

		# Also drop an iasl disassembly next to the match list
		$ acpiproxy scan _STA DSDT.aml --dsl
	`),
	RunE: func(cmd *cobra.Command, args []string) error {

		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		mask := args[0]
		amlPath := filepath.Clean(args[1])

		matcher, err := aml.Compile(mask)
		if err != nil {
			return err
		}
		if _, err := os.Stat(amlPath); os.IsNotExist(err) {
			return fmt.Errorf("file %s does not exist", amlPath)
		}

		if viper.GetBool("scan.dsl") {
			if !utils.ToolExists("iasl") {
				return fmt.Errorf("iasl not found in $PATH (required for --dsl)")
			}
			dsl, err := utils.Disassemble(amlPath)
			if err != nil {
				return err
			}
			log.Infof("disassembly written to %s", dsl)
		}

		decls, err := aml.ScanFile(amlPath)
		if err != nil {
			return err
		}
		log.Debugf("found %d method declaration(s)", len(decls))

		matches := aml.Filter(decls, matcher)
		if len(matches) == 0 {
			log.Warnf("no methods matched mask %s", mask)
			return nil
		}

		if viper.GetBool("scan.json") {
			type match struct {
				Name  string `json:"name"`
				Bytes string `json:"bytes"`
			}
			out := make([]match, 0, len(matches))
			for _, m := range matches {
				out = append(out, match{Name: m.Name(), Bytes: fmt.Sprintf("%X", []byte(m))})
			}
			jsonData, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal json: %v", err)
			}
			if colors.Enabled() {
				if err := quick.Highlight(os.Stdout, string(jsonData)+"\n", "json", "terminal256", "nord"); err != nil {
					return fmt.Errorf("failed to highlight json: %v", err)
				}
			} else {
				fmt.Println(string(jsonData))
			}
			return nil
		}

		for _, m := range matches {
			fmt.Printf("%s %s\n", colors.Bold().Sprint(m.Name()), colors.Faint().Sprintf("(%X)", []byte(m)))
		}

		return nil
	},
}
