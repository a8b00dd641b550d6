package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/reoring/parseas"
	"github.com/reoring/parseas/internal/shapeexpr"
	"github.com/reoring/parseas/load"
)

// inputFlags are the decoding flags shared by subcommands.
type inputFlags struct {
	shape       string
	protocol    string
	contentType string
	encoding    string
	allowUnsafe bool
	jsonDecoder string
	typeName    string
	failFast    bool
	jobs        int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.shape, "shape", "", "Go type expression, e.g. []int or map[string][]float64")
	fs.StringVar(&f.protocol, "protocol", "", "input protocol: json, yaml or gob")
	fs.StringVar(&f.contentType, "content-type", "", "media type of the input, e.g. application/json; charset=latin1")
	fs.StringVar(&f.encoding, "encoding", "", "character encoding of text input (default utf8)")
	fs.BoolVar(&f.allowUnsafe, "allow-unsafe", false, "allow the gob protocol (trusted input only)")
	fs.StringVar(&f.jsonDecoder, "json-decoder", "", "JSON decoder: go-json or encoding/json")
	fs.StringVar(&f.typeName, "type-name", "", "name of the synthesized schema")
	fs.BoolVar(&f.failFast, "fail-fast", false, "stop at the first issue per input")
	_ = cmd.MarkFlagRequired("shape")
}

// options merges the config file settings with flags set on cmd.
func (f *inputFlags) options(cmd *cobra.Command, a *app) ([]parseas.Option, reflect.Type, error) {
	shape, err := shapeexpr.Parse(f.shape)
	if err != nil {
		return nil, nil, err
	}
	cfg := a.cfg
	fs := cmd.Flags()
	if fs.Changed("protocol") {
		cfg.Load.Protocol = f.protocol
	}
	if fs.Changed("content-type") {
		cfg.Load.ContentType = f.contentType
	}
	if fs.Changed("encoding") {
		cfg.Load.Encoding = f.encoding
	}
	if fs.Changed("allow-unsafe") {
		cfg.Load.AllowUnsafe = f.allowUnsafe
	}
	if fs.Changed("json-decoder") {
		cfg.Load.JSONDecoder = f.jsonDecoder
	}
	if fs.Changed("type-name") {
		cfg.TypeName = f.typeName
	}
	if fs.Changed("fail-fast") {
		cfg.FailFast = f.failFast
	}
	if fs.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	a.cfg = cfg
	return append(cfg.Options(), parseas.WithCache(a.cache)), shape, nil
}

func newCheckCmd(a *app) *cobra.Command {
	f := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "check [files...|-]",
		Short: "Validate inputs against a shape",
		Long:  `Decodes each file (or stdin for "-") and validates it as the given shape. Prints "ok <input>" or the issues found; exits non-zero when any input fails.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, shape, err := f.options(cmd, a)
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd, a, shape, args, opts)
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&f.jobs, "jobs", 0, "number of inputs checked concurrently")
	return cmd
}

func runCheck(ctx context.Context, cmd *cobra.Command, a *app, shape reflect.Type, inputs []string, opts []parseas.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var stdin []byte
	for _, in := range inputs {
		if in == "-" {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			stdin = b
			break
		}
	}

	reports := make([]string, len(inputs))
	failed := make([]bool, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Jobs)
	for i, in := range inputs {
		g.Go(func() error {
			var err error
			if in == "-" {
				_, err = parseas.ValidateBytesAsType(gctx, shape, stdin, opts...)
			} else {
				_, err = parseas.ValidateFileAsType(gctx, shape, in, opts...)
			}
			reports[i], failed[i] = report(in, err), err != nil
			a.logger.Debug("checked input", "input", in, "ok", err == nil)
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	w := cmd.OutOrStdout()
	for i, r := range reports {
		fmt.Fprint(w, r)
		if failed[i] {
			n++
		}
	}
	if n > 0 {
		return fmt.Errorf("%d of %d inputs failed", n, len(inputs))
	}
	return nil
}

func report(input string, err error) string {
	if err == nil {
		return "ok " + input + "\n"
	}
	b := &strings.Builder{}
	iss, ok := parseas.AsIssues(err)
	if !ok {
		kind := "error"
		var de *load.DecodeError
		var fe *load.FileError
		switch {
		case errors.As(err, &de):
			kind = "decode error"
		case errors.As(err, &fe):
			kind = "file error"
		}
		fmt.Fprintf(b, "FAIL %s: %s: %v\n", input, kind, err)
		return b.String()
	}
	fmt.Fprintf(b, "FAIL %s: %d issue(s)\n", input, len(iss))
	for _, it := range iss {
		fmt.Fprintf(b, "  %s: %s: %s", it.Dotted(), it.Code, it.Message)
		if it.Hint != "" {
			fmt.Fprintf(b, " (%s)", it.Hint)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
