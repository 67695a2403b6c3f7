package query

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// PythonExtractor implements definition extraction for Python source files
type PythonExtractor struct {
	parser *sitter.Parser
}

// NewPythonExtractor creates a new Python extractor
func NewPythonExtractor() *PythonExtractor {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonExtractor{parser: p}
}

func (p *PythonExtractor) Language() string {
	return "python"
}

func (p *PythonExtractor) Extensions() []string {
	return []string{".py", ".pyw"}
}

func (p *PythonExtractor) Extract(filename string, content []byte) ([]Definition, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	defs := make([]Definition, 0)
	p.walk(tree.RootNode(), content, &defs, "")
	return defs, nil
}

func (p *PythonExtractor) walk(node *sitter.Node, content []byte, defs *[]Definition, className string) {
	switch node.Type() {
	case "function_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		kind := "function"
		if className != "" {
			kind = "method"
		}
		sig := "def " + nameNode.Content(content)
		if paramsNode := node.ChildByFieldName("parameters"); paramsNode != nil {
			sig += paramsNode.Content(content)
		}
		*defs = append(*defs, Definition{
			Name:      nameNode.Content(content),
			Kind:      kind,
			Line:      int(node.StartPoint().Row) + 1,
			Signature: sig,
		})
		// Nested functions are not indexed.
		return

	case "class_definition":
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil {
			return
		}
		name := nameNode.Content(content)
		*defs = append(*defs, Definition{
			Name:      name,
			Kind:      "class",
			Line:      int(node.StartPoint().Row) + 1,
			Signature: "class " + name,
		})
		if bodyNode := node.ChildByFieldName("body"); bodyNode != nil {
			for i := 0; i < int(bodyNode.ChildCount()); i++ {
				p.walk(bodyNode.Child(i), content, defs, name)
			}
		}
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		p.walk(node.Child(i), content, defs, className)
	}
}
