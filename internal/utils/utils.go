// Package utils holds small helpers shared by the CLI commands.
package utils

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/apex/log/handlers/cli"
)

var normalPadding = cli.Default.Padding

// Indent indents apex log line to supplied level
func Indent(f func(s string), level int) func(string) {
	return func(s string) {
		cli.Default.Padding = normalPadding * level
		f(s)
		cli.Default.Padding = normalPadding
	}
}

// ToolExists reports whether an external tool can be found in $PATH.
func ToolExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Disassemble copies the AML table to the temp dir, runs `iasl -da` on
// the copy and returns the path of the resulting .dsl file.
func Disassemble(path string) (string, error) {
	tmp := filepath.Join(os.TempDir(), filepath.Base(path))
	if err := copyFile(path, tmp); err != nil {
		return "", fmt.Errorf("failed to copy AML to temp dir: %v", err)
	}

	if out, err := exec.Command("iasl", "-da", tmp).CombinedOutput(); err != nil {
		return "", fmt.Errorf("failed to disassemble %s: %v: %s", path, err, strings.TrimSpace(string(out)))
	}

	return strings.TrimSuffix(tmp, filepath.Ext(tmp)) + ".dsl", nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
