package resource

import "fmt"

// Reference is a placeholder inside a declaration's properties pointing at an
// output attribute of another declaration. It resolves to a concrete value
// only after the referenced declaration has been applied.
type Reference struct {
	// SourceKind is the kind of the referenced declaration.
	SourceKind Kind
	// SourceName is the logical name of the referenced declaration.
	SourceName string
	// Attribute is the output attribute to read once the source is resolved.
	Attribute string
}

// SourceKey returns the graph key of the referenced declaration.
func (r Reference) SourceKey() string {
	return Key(r.SourceKind, r.SourceName)
}

func (r Reference) String() string {
	return fmt.Sprintf("%s#%s", r.SourceKey(), r.Attribute)
}

// CollectReferences walks a property set recursively and returns every
// Reference found. Order is not guaranteed; callers that need determinism
// should sort by SourceKey.
func CollectReferences(props Properties) []Reference {
	var refs []Reference
	for _, v := range props {
		refs = collectValue(v, refs)
	}
	return refs
}

func collectValue(v any, refs []Reference) []Reference {
	switch val := v.(type) {
	case Reference:
		refs = append(refs, val)
	case Properties:
		for _, nested := range val {
			refs = collectValue(nested, refs)
		}
	case map[string]any:
		for _, nested := range val {
			refs = collectValue(nested, refs)
		}
	case []any:
		for _, nested := range val {
			refs = collectValue(nested, refs)
		}
	}
	return refs
}

// ResolveProperties returns a deep copy of props with every Reference replaced
// by the value produced by resolve. Resolution fails on the first reference
// the resolver cannot satisfy.
func ResolveProperties(props Properties, resolve func(Reference) (string, error)) (Properties, error) {
	out := make(Properties, len(props))
	for k, v := range props {
		rv, err := resolveValue(v, resolve)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}

func resolveValue(v any, resolve func(Reference) (string, error)) (any, error) {
	switch val := v.(type) {
	case Reference:
		return resolve(val)
	case Properties:
		return resolveMap(map[string]any(val), resolve)
	case map[string]any:
		return resolveMap(val, resolve)
	case []any:
		out := make([]any, len(val))
		for i, nested := range val {
			rv, err := resolveValue(nested, resolve)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}

func resolveMap(m map[string]any, resolve func(Reference) (string, error)) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, nested := range m {
		rv, err := resolveValue(nested, resolve)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}
