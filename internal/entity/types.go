package entity

// Language identifies the source language an entity was extracted from.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
)

// Kind classifies a discovered structural unit.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindStruct    Kind = "struct"
	KindClass     Kind = "class"
	KindInterface Kind = "interface" // trait / protocol
	KindEnum      Kind = "enum"
	KindTypeAlias Kind = "type_alias"
)

// LineRange is a 1-indexed, inclusive span of source lines.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid reports whether the range is 1-indexed and non-inverted.
func (r LineRange) Valid() bool {
	return r.Start >= 1 && r.Start <= r.End
}

// Entity is one discovered structural code unit. Entities are immutable after
// creation; re-extracting a file produces replacement entities rather than
// mutating existing ones.
type Entity struct {
	Name      string    `json:"name"`
	Scope     string    `json:"scope,omitempty"` // enclosing entity name, e.g. the class of a method
	Kind      Kind      `json:"kind"`
	FilePath  string    `json:"file_path"` // repository-relative, forward slashes
	LineRange LineRange `json:"line_range"`
	Language  Language  `json:"language"`
	Doc       string    `json:"doc_comment,omitempty"`
	Signature string    `json:"interface_signature,omitempty"` // declaration without body
}

// QualifiedName joins scope and name, e.g. "Calculator.add".
func (e Entity) QualifiedName() string {
	if e.Scope == "" {
		return e.Name
	}
	return e.Scope + "." + e.Name
}

// EdgeKind classifies a directed relationship between entities.
type EdgeKind string

const (
	EdgeCalls      EdgeKind = "calls"
	EdgeUses       EdgeKind = "uses"
	EdgeExtends    EdgeKind = "extends"
	EdgeImplements EdgeKind = "implements"
)

// DependencyEdge is a directed relationship between two entities, referenced
// by key. ToKey may be a bare identifier for references whose target lives in
// a file not yet processed; resolution against the full entity set happens
// downstream.
type DependencyEdge struct {
	FromKey string   `json:"from_key"`
	ToKey   string   `json:"to_key"`
	Kind    EdgeKind `json:"edge_kind"`
}
