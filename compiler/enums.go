package compiler

// Kind of utility class.
// ENUM(margin=1, padding, column)
type Kind int

// Alignment handled by Align pass, names are values of align attribute.
// ENUM(left, right, center)
type Alignment int

// class returns utility class selecting elements for the alignment.
func (a Alignment) class() string {
	switch a {
	case AlignmentLeft:
		return "float-left"
	case AlignmentRight:
		return "float-right"
	default:
		return "mx-auto"
	}
}

// WarningKind classifies recoverable problems found in the document.
// ENUM(inline-margin, malformed-size, duplicate-size, oversized-column, dropped-content)
type WarningKind int
