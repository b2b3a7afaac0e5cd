package composite

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSeparator joins attribute names into an index name.
const DefaultSeparator = "_"

// Join joins attribute names with sep, falling back to DefaultSeparator.
func Join(sep string, names []string) string {
	if sep == "" {
		sep = DefaultSeparator
	}
	return strings.Join(names, sep)
}

// Camelize converts an underscore separated name into UpperCamelCase, e.g.
// "created_at" becomes "CreatedAt". Non-letter characters other than the
// underscore are kept as they are.
func Camelize(name string) string {
	var sb strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		sb.WriteRune(unicode.ToUpper(r))
		sb.WriteString(part[size:])
	}
	return sb.String()
}

// NamespaceName derives the storage namespace of an index:
// <model>By<Camelize(joined attribute names)>.
func NamespaceName(model string, attributes []string) string {
	return model + "By" + Camelize(strings.Join(attributes, "_"))
}

// AccessorName returns the lookup name registered for an index, FindBy<A>And<B>
// for unique indexes and FindAllBy<A>And<B> otherwise.
func AccessorName(unique bool, attributes []string) string {
	camel := make([]string, len(attributes))
	for i, attr := range attributes {
		camel[i] = Camelize(attr)
	}
	prefix := "FindAllBy"
	if unique {
		prefix = "FindBy"
	}
	return prefix + strings.Join(camel, "And")
}
