package engine

import "strings"

// AttributeSource exposes named attributes for rule evaluation. The
// engine depends on nothing else about the entity: stored fields and
// computed attributes look identical through this interface.
type AttributeSource interface {
	// ResolveAttribute returns the value of a named attribute and
	// whether the attribute exists.
	ResolveAttribute(name string) (any, bool)
}

// Resolve returns the value at path on the given entity. The path may
// be a simple attribute name or a dotted path traversing nested
// attribute sources. A missing segment yields an *AttributeError.
func Resolve(entity AttributeSource, path string) (any, error) {
	segments := strings.Split(path, ".")

	var value any = entity
	for _, seg := range segments {
		src, ok := value.(AttributeSource)
		if !ok {
			return nil, &AttributeError{Path: path, Segment: seg}
		}
		value, ok = src.ResolveAttribute(seg)
		if !ok {
			return nil, &AttributeError{Path: path, Segment: seg}
		}
	}
	return value, nil
}
