package main

import (
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/parseas"
	"github.com/reoring/parseas/internal/shapeexpr"
)

func newSchemaCmd(a *app) *cobra.Command {
	var shapeExpr, typeName string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of a shape",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			shape, err := shapeexpr.Parse(shapeExpr)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("type-name") {
				typeName = a.cfg.TypeName
			}
			s, err := a.cache.Lookup(shape, parseas.WithTypeName(typeName))
			if err != nil {
				return err
			}
			js, err := s.JSONSchema()
			if err != nil {
				return err
			}
			b, err := gojson.MarshalIndent(js, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().StringVar(&shapeExpr, "shape", "", "Go type expression")
	cmd.Flags().StringVar(&typeName, "type-name", "", "schema title (default ParsingModel[<shape>])")
	_ = cmd.MarkFlagRequired("shape")
	return cmd
}
