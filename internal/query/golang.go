package query

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// GoExtractor implements definition extraction for Go source files
type GoExtractor struct {
	parser *sitter.Parser
}

// NewGoExtractor creates a new Go extractor
func NewGoExtractor() *GoExtractor {
	p := sitter.NewParser()
	p.SetLanguage(golang.GetLanguage())
	return &GoExtractor{parser: p}
}

func (g *GoExtractor) Language() string {
	return "go"
}

func (g *GoExtractor) Extensions() []string {
	return []string{".go"}
}

func (g *GoExtractor) Extract(filename string, content []byte) ([]Definition, error) {
	tree, err := g.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	defs := make([]Definition, 0)
	g.walk(tree.RootNode(), content, &defs)
	return defs, nil
}

func (g *GoExtractor) walk(node *sitter.Node, content []byte, defs *[]Definition) {
	switch node.Type() {
	case "function_declaration":
		if d, ok := g.function(node, content, "func"); ok {
			*defs = append(*defs, d)
		}

	case "method_declaration":
		if d, ok := g.method(node, content); ok {
			*defs = append(*defs, d)
		}

	case "type_declaration":
		*defs = append(*defs, g.typeDecl(node, content)...)

	case "const_declaration", "var_declaration":
		*defs = append(*defs, g.valueDecl(node, content)...)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		g.walk(node.Child(i), content, defs)
	}
}

func (g *GoExtractor) function(node *sitter.Node, content []byte, kind string) (Definition, bool) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return Definition{}, false
	}

	return Definition{
		Name:      nameNode.Content(content),
		Kind:      kind,
		Line:      int(node.StartPoint().Row) + 1,
		Signature: g.functionSignature(node, content),
	}, true
}

func (g *GoExtractor) method(node *sitter.Node, content []byte) (Definition, bool) {
	d, ok := g.function(node, content, "method")
	if !ok {
		return Definition{}, false
	}

	if receiverNode := node.ChildByFieldName("receiver"); receiverNode != nil {
		d.Signature = receiverNode.Content(content) + " " + d.Signature
	}
	return d, true
}

func (g *GoExtractor) typeDecl(node *sitter.Node, content []byte) []Definition {
	defs := make([]Definition, 0)

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "type_spec" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}

		kind := "type"
		if typeNode := child.ChildByFieldName("type"); typeNode != nil {
			switch typeNode.Type() {
			case "struct_type":
				kind = "struct"
			case "interface_type":
				kind = "interface"
			}
		}

		defs = append(defs, Definition{
			Name:      nameNode.Content(content),
			Kind:      kind,
			Line:      int(child.StartPoint().Row) + 1,
			Signature: "type " + nameNode.Content(content) + " " + kind,
		})
	}

	return defs
}

func (g *GoExtractor) valueDecl(node *sitter.Node, content []byte) []Definition {
	kind := "var"
	if node.Type() == "const_declaration" {
		kind = "const"
	}

	defs := make([]Definition, 0)
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		if n.Type() == "const_spec" || n.Type() == "var_spec" {
			nameNode := n.ChildByFieldName("name")
			if nameNode != nil {
				defs = append(defs, Definition{
					Name: nameNode.Content(content),
					Kind: kind,
					Line: int(n.StartPoint().Row) + 1,
				})
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			collect(n.Child(i))
		}
	}
	collect(node)
	return defs
}

func (g *GoExtractor) functionSignature(node *sitter.Node, content []byte) string {
	nameNode := node.ChildByFieldName("name")
	paramsNode := node.ChildByFieldName("parameters")
	resultNode := node.ChildByFieldName("result")

	sig := "func"
	if nameNode != nil {
		sig += " " + nameNode.Content(content)
	}
	if paramsNode != nil {
		sig += paramsNode.Content(content)
	}
	if resultNode != nil {
		sig += " " + resultNode.Content(content)
	}

	return strings.TrimSpace(sig)
}
