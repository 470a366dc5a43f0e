package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ExecBuilder runs an external indexer, e.g. node util/single_index.js {input} {output}
type ExecBuilder struct {
	argv []string
}

// NewExecBuilder validates the command template
func NewExecBuilder(argv []string) (*ExecBuilder, error) {
	if len(argv) == 0 {
		return nil, errors.New("exec index builder needs a command")
	}
	return &ExecBuilder{argv: argv}, nil
}

// Args returns the command line for one page
func (b *ExecBuilder) Args(input, output string) []string {
	r := strings.NewReplacer("{input}", input, "{output}", output)
	args := make([]string, len(b.argv))
	for i, arg := range b.argv {
		args[i] = r.Replace(arg)
	}
	return args
}

// Build implements Builder
func (b *ExecBuilder) Build(ctx context.Context, input, output string) error {
	args := b.Args(input, output)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
