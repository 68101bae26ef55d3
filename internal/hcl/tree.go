package hcl

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/exptosource/internal/metatree"
)

// DecodeTreeFile reads any HCL file into a metadata tree without a schema.
// Attributes become leaves or nodes; a block is stored under its type and
// then under each of its labels. Blocks landing on the same path are
// collected into a list in file order.
func DecodeTreeFile(path string) (metatree.Tree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeTree(src, path)
}

// DecodeTree is DecodeTreeFile over in-memory source.
func DecodeTree(src []byte, filename string) (metatree.Tree, error) {
	file, diags := hclsyntax.ParseConfig(src, filename, hcl.InitialPos)
	if err := diagnosticsError(diags); err != nil {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, err)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("failed to read HCL file %s: unexpected body type %T", filename, file.Body)
	}
	out, err := bodyToMap(body)
	if err != nil {
		return nil, fmt.Errorf("in %s: %w", filename, err)
	}
	return metatree.Tree(out), nil
}

func bodyToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if err := diagnosticsError(diags); err != nil {
			return nil, err
		}
		native, err := metatree.ValueFromCty(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = native
	}

	for _, block := range body.Blocks {
		child, err := bodyToMap(block.Body)
		if err != nil {
			return nil, fmt.Errorf("%s block: %w", block.Type, err)
		}
		insertBlock(out, append([]string{block.Type}, block.Labels...), child)
	}
	return out, nil
}

func insertBlock(m map[string]any, path []string, child map[string]any) {
	if len(path) == 1 {
		switch existing := m[path[0]].(type) {
		case nil:
			m[path[0]] = child
		case []any:
			m[path[0]] = append(existing, child)
		default:
			m[path[0]] = []any{existing, child}
		}
		return
	}
	next, ok := m[path[0]].(map[string]any)
	if !ok {
		next = make(map[string]any)
		m[path[0]] = next
	}
	insertBlock(next, path[1:], child)
}
