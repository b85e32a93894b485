package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

const (
	defaultIndentUnit = "    "
	bodySummaryLines  = 10
	bodySummaryBytes  = 500
)

// ParseError indicates the source text is not syntactically valid Python.
// Callers are expected to skip the file, not abort the run.
type ParseError struct {
	Module string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: source contains syntax errors", e.Module)
}

// Extract parses Python source text into an ordered list of declarations:
// the module first, then every class, function, and method in document
// order, pre-order over the containment tree. The input is never mutated.
func Extract(source []byte, moduleName string) ([]*Declaration, error) {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", moduleName, err)
	}
	root := tree.RootNode()
	if root.HasError() {
		return nil, &ParseError{Module: moduleName}
	}

	module := &Declaration{
		Name:          moduleName,
		QualifiedName: moduleName,
		Kind:          KindModule,
		Span: Span{
			StartByte: int(root.StartByte()),
			EndByte:   int(root.EndByte()),
			StartLine: int(root.StartPoint().Row) + 1,
			EndLine:   int(root.EndPoint().Row) + 1,
		},
	}
	fillBodyInfo(module, root, source)

	decls := []*Declaration{module}
	walkBlock(root, module, source, &decls)
	return decls, nil
}

// walkBlock visits the statements of a module, class, or function body and
// appends any contained declarations pre-order.
func walkBlock(block *sitter.Node, parent *Declaration, source []byte, out *[]*Declaration) {
	if block == nil {
		return
	}
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		node := child
		declStart := child
		if child.Type() == "decorated_definition" {
			node = child.ChildByFieldName("definition")
			if node == nil {
				continue
			}
		}
		switch node.Type() {
		case "function_definition", "class_definition":
			decl := buildDeclaration(node, declStart, parent, source)
			if decl == nil {
				continue
			}
			*out = append(*out, decl)
			walkBlock(node.ChildByFieldName("body"), decl, source, out)
		}
	}
}

func buildDeclaration(node, declStart *sitter.Node, parent *Declaration, source []byte) *Declaration {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(source)

	kind := KindClass
	if node.Type() == "function_definition" {
		kind = KindFunction
		if parent.Kind == KindClass {
			kind = KindMethod
		}
	}

	qualified := name
	if parent.Kind != KindModule {
		qualified = parent.QualifiedName + "." + name
	}

	decl := &Declaration{
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		Depth:         parent.Depth + 1,
		Parent:        parent,
		Span: Span{
			StartByte: int(declStart.StartByte()),
			EndByte:   int(node.EndByte()),
			StartLine: int(declStart.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
		},
		IsAsync: hasKeyword(node, "async"),
		Indent:  lineIndent(source, lineStart(source, int(node.StartByte()))),
	}

	body := node.ChildByFieldName("body")
	if body != nil {
		decl.Signature = strings.TrimSuffix(strings.TrimSpace(string(source[node.StartByte():body.StartByte()])), ":")
		decl.Signature = strings.TrimSpace(decl.Signature)
	} else {
		decl.Signature = strings.TrimSpace(node.Content(source))
	}

	if kind != KindClass {
		if params := node.ChildByFieldName("parameters"); params != nil {
			decl.Params = extractParams(params, source)
		}
		if ret := node.ChildByFieldName("return_type"); ret != nil {
			decl.ReturnType = ret.Content(source)
		}
		decl.Raises = collectRaises(body, source)
	}

	fillBodyInfo(decl, body, source)
	if kind != KindClass {
		decl.BodySummary = summarizeBody(decl, source)
	}
	return decl
}

// fillBodyInfo captures the docstring (if any) and the indentation geometry
// of a declaration whose body block is given. For the module declaration the
// block is the root node itself.
func fillBodyInfo(decl *Declaration, block *sitter.Node, source []byte) {
	first := firstStatement(block)
	if first == nil {
		decl.BodyStartByte = len(source)
		decl.IndentUnit = indentUnitFor(decl)
		return
	}

	decl.BodyStartByte = lineStart(source, int(first.StartByte()))
	if decl.Kind == KindModule {
		decl.IndentUnit = ""
	} else {
		// The body shares the header line when the colon sits on the same
		// line as the first statement (def f(): pass).
		colon := lastNonBlank(source, int(block.StartByte()))
		decl.BodyOnHeaderLine = lineStart(source, colon) == decl.BodyStartByte
		bodyIndent := lineIndent(source, decl.BodyStartByte)
		if !decl.BodyOnHeaderLine && strings.HasPrefix(bodyIndent, decl.Indent) && len(bodyIndent) > len(decl.Indent) {
			decl.IndentUnit = bodyIndent[len(decl.Indent):]
		} else {
			decl.IndentUnit = indentUnitFor(decl)
		}
	}

	if ds := docstringOf(first, source); ds != nil {
		decl.Docstring = ds
	}
}

// lastNonBlank returns the offset of the last non-whitespace byte before off.
func lastNonBlank(source []byte, off int) int {
	for off > 0 {
		off--
		switch source[off] {
		case ' ', '\t', '\n', '\r':
		default:
			return off
		}
	}
	return 0
}

// firstStatement returns the first non-comment named child of a block.
func firstStatement(block *sitter.Node) *sitter.Node {
	if block == nil {
		return nil
	}
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		return child
	}
	return nil
}

// docstringOf recognizes a docstring: the first body statement must be a
// bare string expression, nothing else counts.
func docstringOf(first *sitter.Node, source []byte) *Docstring {
	if first.Type() != "expression_statement" || first.NamedChildCount() != 1 {
		return nil
	}
	str := first.NamedChild(0)
	if str.Type() != "string" && str.Type() != "concatenated_string" {
		return nil
	}
	raw := str.Content(source)
	return &Docstring{
		Span: Span{
			StartByte: int(str.StartByte()),
			EndByte:   int(str.EndByte()),
			StartLine: int(str.StartPoint().Row) + 1,
			EndLine:   int(str.EndPoint().Row) + 1,
		},
		Raw:  raw,
		Text: StripQuotes(raw),
	}
}

func extractParams(params *sitter.Node, source []byte) []Param {
	var out []Param
	for i := 0; i < int(params.NamedChildCount()); i++ {
		node := params.NamedChild(i)
		switch node.Type() {
		case "identifier":
			out = append(out, Param{Name: node.Content(source)})
		case "typed_parameter":
			p := Param{}
			if inner := node.NamedChild(0); inner != nil {
				applyPatternName(&p, inner, source)
			}
			if tn := node.ChildByFieldName("type"); tn != nil {
				p.Type = tn.Content(source)
			}
			out = append(out, p)
		case "default_parameter", "typed_default_parameter":
			p := Param{HasDefault: true}
			if nn := node.ChildByFieldName("name"); nn != nil {
				p.Name = nn.Content(source)
			}
			if tn := node.ChildByFieldName("type"); tn != nil {
				p.Type = tn.Content(source)
			}
			if vn := node.ChildByFieldName("value"); vn != nil {
				p.Default = vn.Content(source)
			}
			out = append(out, p)
		case "list_splat_pattern", "dictionary_splat_pattern":
			p := Param{}
			applyPatternName(&p, node, source)
			out = append(out, p)
		}
	}
	return out
}

func applyPatternName(p *Param, node *sitter.Node, source []byte) {
	switch node.Type() {
	case "list_splat_pattern":
		p.Variadic = true
		if inner := node.NamedChild(0); inner != nil {
			p.Name = inner.Content(source)
		}
	case "dictionary_splat_pattern":
		p.KwVariadic = true
		if inner := node.NamedChild(0); inner != nil {
			p.Name = inner.Content(source)
		}
	default:
		p.Name = node.Content(source)
	}
}

// collectRaises gathers named error types raised inside a body, skipping
// nested declarations so a method's docstring never claims its inner
// helpers' errors.
func collectRaises(block *sitter.Node, source []byte) []string {
	var out []string
	seen := map[string]bool{}
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "function_definition", "class_definition", "decorated_definition":
			return
		case "raise_statement":
			if n.NamedChildCount() > 0 {
				if name := raisedName(n.NamedChild(0), source); name != "" && !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
			return
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	if block != nil {
		for i := 0; i < int(block.NamedChildCount()); i++ {
			visit(block.NamedChild(i))
		}
	}
	return out
}

func raisedName(expr *sitter.Node, source []byte) string {
	switch expr.Type() {
	case "call":
		if fn := expr.ChildByFieldName("function"); fn != nil {
			return raisedName(fn, source)
		}
	case "identifier":
		return expr.Content(source)
	case "attribute":
		full := expr.Content(source)
		if idx := strings.LastIndex(full, "."); idx != -1 {
			return full[idx+1:]
		}
		return full
	}
	return ""
}

func summarizeBody(decl *Declaration, source []byte) string {
	start := decl.BodyStartByte
	end := decl.Span.EndByte
	if start >= end || start >= len(source) {
		return ""
	}
	if end > len(source) {
		end = len(source)
	}
	lines := strings.Split(string(source[start:end]), "\n")
	if len(lines) > bodySummaryLines {
		lines = lines[:bodySummaryLines]
	}
	body := strings.Join(lines, "\n")
	if len(body) > bodySummaryBytes {
		body = body[:bodySummaryBytes] + "\n# ... (truncated)"
	}
	return strings.TrimRight(body, "\n")
}

func indentUnitFor(decl *Declaration) string {
	if decl.Kind == KindModule {
		return ""
	}
	return defaultIndentUnit
}

func hasKeyword(node *sitter.Node, kw string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == kw {
			return true
		}
	}
	return false
}

// lineStart returns the offset of the first byte of the line containing off.
func lineStart(source []byte, off int) int {
	if off > len(source) {
		off = len(source)
	}
	for off > 0 && source[off-1] != '\n' {
		off--
	}
	return off
}

// lineIndent returns the run of spaces and tabs starting at a line offset.
func lineIndent(source []byte, start int) string {
	end := start
	for end < len(source) && (source[end] == ' ' || source[end] == '\t') {
		end++
	}
	return string(source[start:end])
}

// StripQuotes removes string prefixes (r, b, f, u) and the surrounding
// quote delimiters from a Python string literal.
func StripQuotes(raw string) string {
	s := raw
	for len(s) > 0 {
		c := s[0]
		if c == 'r' || c == 'R' || c == 'b' || c == 'B' || c == 'f' || c == 'F' || c == 'u' || c == 'U' {
			s = s[1:]
			continue
		}
		break
	}
	for _, delim := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, delim) {
			s = strings.TrimPrefix(s, delim)
			s = strings.TrimSuffix(s, delim)
			return s
		}
	}
	return s
}
