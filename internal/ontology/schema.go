// Package ontology reads the class and property vocabulary of an OWL
// ontology written in RDF/XML, optionally following owl:imports.
package ontology

// Vocabulary IRIs the loader matches on.
const (
	rdfType             = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	owlClass            = "http://www.w3.org/2002/07/owl#Class"
	owlObjectProperty   = "http://www.w3.org/2002/07/owl#ObjectProperty"
	owlDatatypeProperty = "http://www.w3.org/2002/07/owl#DatatypeProperty"
	owlImports          = "http://www.w3.org/2002/07/owl#imports"
)

// Schema is the flattened vocabulary of an ontology and its imports.
//
// Entries from imported documents follow the importing document's own
// entries. Each document contributes a subject at most once per list, but
// the same IRI declared in two documents appears twice.
type Schema struct {
	Classes    []string `json:"classes" yaml:"classes"`
	Properties []string `json:"properties" yaml:"properties"`

	// Sources lists every document that loaded, in load order.
	Sources []string `json:"sources" yaml:"sources"`

	// FailedImports lists imports that could not be loaded or parsed.
	FailedImports []ImportFailure `json:"failed_imports,omitempty" yaml:"failed_imports,omitempty"`
}

// ImportFailure records one import that contributed nothing.
type ImportFailure struct {
	Location string `json:"location" yaml:"location"`
	Error    string `json:"error" yaml:"error"`
}

// Empty reports whether the schema names no classes and no properties.
func (s *Schema) Empty() bool {
	return s == nil || (len(s.Classes) == 0 && len(s.Properties) == 0)
}

// document is the vocabulary of a single parsed file.
type document struct {
	classes    []string
	properties []string
	imports    []string
}
