package query

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptExtractor implements definition extraction for TypeScript and
// JavaScript source files
type TypeScriptExtractor struct {
	tsParser *sitter.Parser
	jsParser *sitter.Parser
}

// NewTypeScriptExtractor creates a new TypeScript/JavaScript extractor
func NewTypeScriptExtractor() *TypeScriptExtractor {
	ts := sitter.NewParser()
	ts.SetLanguage(typescript.GetLanguage())

	js := sitter.NewParser()
	js.SetLanguage(javascript.GetLanguage())

	return &TypeScriptExtractor{
		tsParser: ts,
		jsParser: js,
	}
}

func (t *TypeScriptExtractor) Language() string {
	return "typescript"
}

func (t *TypeScriptExtractor) Extensions() []string {
	return []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}
}

func (t *TypeScriptExtractor) Extract(filename string, content []byte) ([]Definition, error) {
	// Choose parser based on extension
	p := t.tsParser
	if strings.HasSuffix(filename, ".js") || strings.HasSuffix(filename, ".jsx") ||
		strings.HasSuffix(filename, ".mjs") || strings.HasSuffix(filename, ".cjs") {
		p = t.jsParser
	}

	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	defs := make([]Definition, 0)
	t.walk(tree.RootNode(), content, &defs, "")
	return defs, nil
}

func (t *TypeScriptExtractor) walk(node *sitter.Node, content []byte, defs *[]Definition, className string) {
	switch node.Type() {
	case "function_declaration":
		if d, ok := named(node, content, "function"); ok {
			d.Signature = "function " + d.Name + params(node, content)
			*defs = append(*defs, d)
		}
		return

	case "method_definition":
		if d, ok := named(node, content, "method"); ok {
			d.Signature = className + "." + d.Name + params(node, content)
			*defs = append(*defs, d)
		}
		return

	case "class_declaration":
		d, ok := named(node, content, "class")
		if !ok {
			return
		}
		d.Signature = "class " + d.Name
		*defs = append(*defs, d)
		if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
			for i := 0; i < int(bodyNode.ChildCount()); i++ {
				t.walk(bodyNode.Child(i), content, defs, d.Name)
			}
		}
		return

	case "interface_declaration":
		if d, ok := named(node, content, "interface"); ok {
			d.Signature = "interface " + d.Name
			*defs = append(*defs, d)
		}
		return

	case "type_alias_declaration":
		if d, ok := named(node, content, "type"); ok {
			d.Signature = "type " + d.Name
			*defs = append(*defs, d)
		}
		return

	case "lexical_declaration", "variable_declaration":
		t.variableFunctions(node, content, defs)
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		t.walk(node.Child(i), content, defs, className)
	}
}

// variableFunctions captures `const f = () => ...` and `const f = function ...`
// bindings, the common way functions are declared in modern TS/JS.
func (t *TypeScriptExtractor) variableFunctions(node *sitter.Node, content []byte, defs *[]Definition) {
	for i := 0; i < int(node.ChildCount()); i++ {
		declarator := node.Child(i)
		if declarator.Type() != "variable_declarator" {
			continue
		}
		nameNode := declarator.ChildByFieldName("name")
		valueNode := declarator.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		switch valueNode.Type() {
		case "arrow_function", "function_expression", "function":
			name := nameNode.Content(content)
			*defs = append(*defs, Definition{
				Name:      name,
				Kind:      "function",
				Line:      int(declarator.StartPoint().Row) + 1,
				Signature: name + params(valueNode, content),
			})
		}
	}
}

func named(node *sitter.Node, content []byte, kind string) (Definition, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return Definition{}, false
	}
	return Definition{
		Name: nameNode.Content(content),
		Kind: kind,
		Line: int(node.StartPoint().Row) + 1,
	}, true
}

func params(node *sitter.Node, content []byte) string {
	paramsNode := node.ChildByFieldName("parameters")
	if paramsNode == nil {
		return "()"
	}
	return paramsNode.Content(content)
}
