package codegen

// NullabilityClassifier decides which fields a builder must enforce.
//
// Primitive fields are always required. Any other field is required when it does
// NOT carry the not-null marker: the marker states that the source type never holds
// nil, and the builder leaves such fields to the caller. The polarity is the
// inverse of what the marker's name suggests and is kept as is.
type NullabilityClassifier struct {
	marker string
}

// NewNullabilityClassifier creates a classifier for marker. An empty marker means
// NotNullMarker.
func NewNullabilityClassifier(marker string) *NullabilityClassifier {
	if marker == "" {
		marker = NotNullMarker
	}

	return &NullabilityClassifier{marker: marker}
}

// IsRequired reports whether the builder must reject a Build with field unset.
func (c *NullabilityClassifier) IsRequired(field *FieldDescriptor) bool {
	if field.Type.IsPrimitive() {
		return true
	}

	return !field.HasMarker(c.marker)
}

// Classify returns copies of fields with Required filled in. The input is left
// untouched.
func (c *NullabilityClassifier) Classify(fields []*FieldDescriptor) []*FieldDescriptor {
	classified := make([]*FieldDescriptor, 0, len(fields))
	for _, field := range fields {
		f := *field
		f.Required = c.IsRequired(field)
		classified = append(classified, &f)
	}

	return classified
}
