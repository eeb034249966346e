// Package hclcodec decodes evaluated HCL argument bodies into the Go input
// structs runner handlers declare, bridging cty values and native Go types.
package hclcodec

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/pipelibgo/internal/conftree"
	"github.com/vk/pipelibgo/internal/ctxlog"
)

// tagName is the struct tag runner input structs use to name their
// arguments, e.g. `pl:"url"` or `pl:"method,optional"`.
const tagName = "pl"

// DecodeArguments evaluates the attributes of an arguments body in evalCtx
// and populates inputStruct using reflection. Fields without a matching
// attribute fail unless tagged optional; attributes without a matching
// field are ignored.
func DecodeArguments(ctx context.Context, inputStruct any, body hcl.Body, evalCtx *hcl.EvalContext) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting argument decoding.")

	structVal := reflect.ValueOf(inputStruct)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("inputStruct must be a non-nil pointer")
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	var attrs hcl.Attributes
	if body != nil {
		var diags hcl.Diagnostics
		attrs, diags = body.JustAttributes()
		if diags.HasErrors() {
			return diags
		}
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		lookupName := field.Name
		optional := false
		if tag := field.Tag.Get(tagName); tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				lookupName = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "optional" {
					optional = true
				}
			}
		}

		attr, provided := attrs[lookupName]
		if !provided {
			if optional {
				continue
			}
			return fmt.Errorf("missing required argument %q", lookupName)
		}

		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return diags
		}
		if err := decode(ctx, val, fieldVal); err != nil {
			return fmt.Errorf("failed to decode argument '%s': %w", lookupName, err)
		}
	}

	logger.Debug("Finished argument decoding successfully.")
	return nil
}

// decode converts a cty.Value into the given settable struct field.
// Generic targets (any, map[string]any, []any) take the configuration-tree
// route; concrete targets go through gocty's implied typing.
func decode(ctx context.Context, val cty.Value, fieldVal reflect.Value) error {
	logger := ctxlog.FromContext(ctx)

	if isGenericTarget(fieldVal.Type()) {
		native, err := conftree.FromCty(val)
		if err != nil {
			return err
		}
		if native == nil {
			fieldVal.Set(reflect.Zero(fieldVal.Type()))
			return nil
		}
		nativeVal := reflect.ValueOf(native)
		if !nativeVal.Type().AssignableTo(fieldVal.Type()) {
			return fmt.Errorf("cannot assign %s to field of type %s", nativeVal.Type(), fieldVal.Type())
		}
		fieldVal.Set(nativeVal)
		return nil
	}

	target := fieldVal.Addr().Interface()
	impliedType, err := gocty.ImpliedType(fieldVal.Interface())
	if err != nil {
		logger.Debug("Could not imply cty.Type from Go type, attempting direct decoding.",
			"go_type", fieldVal.Type().String(), "error", err)
		return gocty.FromCtyValue(val, target)
	}

	convertedVal, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w",
			val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}

	return gocty.FromCtyValue(convertedVal, target)
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

func isGenericTarget(t reflect.Type) bool {
	switch {
	case t == anyType:
		return true
	case t.Kind() == reflect.Map && t.Key().Kind() == reflect.String && t.Elem() == anyType:
		return true
	case t.Kind() == reflect.Slice && t.Elem() == anyType:
		return true
	}
	return false
}
