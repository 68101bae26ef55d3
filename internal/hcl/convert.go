package hcl

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/exptosource/internal/ctxlog"
	"github.com/vk/exptosource/internal/metatree"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Converter decodes loosely typed trees into Go structs tagged with `cty`,
// applying HCL's implicit conversions (numbers to strings and so on).
type Converter struct{}

// NewConverter creates a new converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Decode overlays t on the current contents of target, a non-nil struct
// pointer, and decodes the result back into it. Fields of target missing
// from t keep their values, so callers set defaults before decoding.
func (c *Converter) Decode(ctx context.Context, t metatree.Tree, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Ptr || ptr.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer, got %T", target)
	}

	defaults, err := c.ToCtyValue(ptr.Elem().Interface())
	if err != nil {
		return err
	}
	base, err := metatree.FromCty(defaults)
	if err != nil {
		return err
	}

	for _, k := range t.Keys() {
		if _, ok := base[k]; !ok {
			return fmt.Errorf("unsupported attribute %q", k)
		}
	}
	merged := metatree.Merge(base, t, metatree.PreferIncoming)

	val, err := metatree.ToCty(merged)
	if err != nil {
		return err
	}
	return c.decode(ctx, val, target)
}

// decode converts val to the type implied by target and stores it there.
func (c *Converter) decode(ctx context.Context, val cty.Value, target any) error {
	impliedType, err := gocty.ImpliedType(reflect.ValueOf(target).Elem().Interface())
	if err != nil {
		return gocty.FromCtyValue(val, target)
	}

	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		ctxlog.FromContext(ctx).Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}
	return gocty.FromCtyValue(converted, target)
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
