package column

import "errors"

var (
	errPathColumn      = errors.New("path must name a column")
	errPathSuper       = errors.New("path must name a super column and a sub-column")
	errPathSuperOnFlat = errors.New("super column path on standard namespace")
	errPathColumnOnly  = errors.New("sub-column path without super column")
)

// CheckGetPath validates a Get path against the layout of def.
func CheckGetPath(def NamespaceDef, path ColumnPath) error {
	switch def.Layout {
	case Standard:
		if path.SuperColumn != "" {
			return NewError(CodeInvalidArgument, "get", def.Name, errPathSuperOnFlat)
		}
		if path.Column == "" {
			return NewError(CodeInvalidArgument, "get", def.Name, errPathColumn)
		}
	case Super:
		if path.SuperColumn == "" || path.Column == "" {
			return NewError(CodeInvalidArgument, "get", def.Name, errPathSuper)
		}
	}
	return nil
}

// CheckRemovePath validates a Remove path against the layout of def.
func CheckRemovePath(def NamespaceDef, path ColumnPath) error {
	switch def.Layout {
	case Standard:
		if path.SuperColumn != "" {
			return NewError(CodeInvalidArgument, "remove", def.Name, errPathSuperOnFlat)
		}
	case Super:
		if path.SuperColumn == "" && path.Column != "" {
			return NewError(CodeInvalidArgument, "remove", def.Name, errPathColumnOnly)
		}
	}
	return nil
}

// CheckProvision validates that def may be provisioned where existing (if
// found) is already registered under the same name.
func CheckProvision(def NamespaceDef, existing NamespaceDef, found bool) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if found && existing.Layout != def.Layout {
		return NewError(CodeLayoutMismatch, "provision", def.Name, errors.New("namespace already provisioned with layout "+string(existing.Layout)))
	}
	return nil
}
