package lsp

import (
	"strings"

	"github.com/tidwall/gjson"
)

// The servers this adapter talks to answer several methods with more than
// one JSON shape (bare object vs array, TextEdit vs InsertReplaceEdit,
// SymbolInformation vs DocumentSymbol). Responses are therefore walked with
// gjson rather than unmarshalled into one struct per shape.

func positionFromJSON(v gjson.Result) Position {
	return Position{
		Line:      int(v.Get("line").Int()),
		Character: int(v.Get("character").Int()),
	}
}

func rangeFromJSON(v gjson.Result) Range {
	return Range{
		Start: positionFromJSON(v.Get("start")),
		End:   positionFromJSON(v.Get("end")),
	}
}

func textEditFromJSON(v gjson.Result) TextEdit {
	return TextEdit{
		Range:   rangeFromJSON(v.Get("range")),
		NewText: v.Get("newText").String(),
	}
}

func locationFromJSON(v gjson.Result) Location {
	if v.Get("targetUri").Exists() {
		// LocationLink: the selection range is the navigation target.
		r := v.Get("targetSelectionRange")
		if !r.Exists() {
			r = v.Get("targetRange")
		}
		return Location{
			URI:   DocumentURI(v.Get("targetUri").String()),
			Range: rangeFromJSON(r),
		}
	}
	return Location{
		URI:   DocumentURI(v.Get("uri").String()),
		Range: rangeFromJSON(v.Get("range")),
	}
}

// ParseLocations decodes a definition/references/implementation result:
// null, a single Location, an array of Locations, or an array of
// LocationLinks.
func ParseLocations(raw []byte) ([]Location, error) {
	v := gjson.ParseBytes(raw)
	switch v.Type {
	case gjson.Null:
		return nil, nil
	case gjson.JSON:
	default:
		return nil, ErrInvalidShape
	}

	if v.IsObject() {
		return []Location{locationFromJSON(v)}, nil
	}
	if !v.IsArray() {
		return nil, ErrInvalidShape
	}
	var out []Location
	v.ForEach(func(_, item gjson.Result) bool {
		out = append(out, locationFromJSON(item))
		return true
	})
	return out, nil
}

func completionItemFromJSON(v gjson.Result) CompletionItem {
	item := CompletionItem{
		Label:      v.Get("label").String(),
		Kind:       int(v.Get("kind").Int()),
		Detail:     v.Get("detail").String(),
		InsertText: v.Get("insertText").String(),
		FilterText: v.Get("filterText").String(),
		SortText:   v.Get("sortText").String(),
		Preselect:  v.Get("preselect").Bool(),
		Deprecated: v.Get("deprecated").Bool(),
	}

	doc := v.Get("documentation")
	if doc.IsObject() {
		item.Documentation = doc.Get("value").String()
	} else {
		item.Documentation = doc.String()
	}

	if te := v.Get("textEdit"); te.Exists() {
		edit := TextEdit{NewText: te.Get("newText").String()}
		if ins := te.Get("insert"); ins.Exists() {
			// InsertReplaceEdit: the insert range is used, replace dropped.
			edit.Range = rangeFromJSON(ins)
		} else {
			edit.Range = rangeFromJSON(te.Get("range"))
		}
		item.PrimaryEdit = &edit
	}

	v.Get("additionalTextEdits").ForEach(func(_, e gjson.Result) bool {
		item.AdditionalEdits = append(item.AdditionalEdits, textEditFromJSON(e))
		return true
	})

	return item
}

// ParseCompletions decodes a completion result: null, a CompletionItem
// array, or a CompletionList. isIncomplete is true when the server wants to
// be re-queried as the user types.
func ParseCompletions(raw []byte) (items []CompletionItem, isIncomplete bool, err error) {
	v := gjson.ParseBytes(raw)
	switch {
	case v.Type == gjson.Null:
		return nil, false, nil
	case v.IsArray():
	case v.IsObject():
		isIncomplete = v.Get("isIncomplete").Bool()
		v = v.Get("items")
		if !v.IsArray() {
			return nil, false, ErrInvalidShape
		}
	default:
		return nil, false, ErrInvalidShape
	}

	v.ForEach(func(_, item gjson.Result) bool {
		items = append(items, completionItemFromJSON(item))
		return true
	})
	return items, isIncomplete, nil
}

// ParseSignatureHelp decodes a signatureHelp result into the active
// signature's label and active parameter. Returns nil for null results and
// for servers that answer with an empty signature list.
func ParseSignatureHelp(raw []byte) (*SignatureHelp, error) {
	v := gjson.ParseBytes(raw)
	if v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, ErrInvalidShape
	}

	sigs := v.Get("signatures")
	if !sigs.IsArray() || len(sigs.Array()) == 0 {
		return nil, nil
	}
	active := int(v.Get("activeSignature").Int())
	arr := sigs.Array()
	if active < 0 || active >= len(arr) {
		active = 0
	}
	sig := arr[active]

	help := &SignatureHelp{Label: sig.Get("label").String()}
	// A signature-level activeParameter overrides the top-level one.
	if p := sig.Get("activeParameter"); p.Exists() {
		n := int(p.Int())
		help.ActiveParameter = &n
	} else if p := v.Get("activeParameter"); p.Exists() {
		n := int(p.Int())
		help.ActiveParameter = &n
	}
	return help, nil
}

// ParseWorkspaceEdit decodes a WorkspaceEdit, merging `changes` and
// `documentChanges` entries per URI. documentChanges of kinds other than
// TextDocumentEdit (file creates/renames/deletes) are ignored at this
// layer.
func ParseWorkspaceEdit(raw []byte) (*WorkspaceEdit, error) {
	v := gjson.ParseBytes(raw)
	if v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, ErrInvalidShape
	}

	merged := make(map[DocumentURI]*DocumentEdit)
	var order []DocumentURI

	add := func(uri DocumentURI, version *int, edits []TextEdit) {
		de, ok := merged[uri]
		if !ok {
			de = &DocumentEdit{URI: uri}
			merged[uri] = de
			order = append(order, uri)
		}
		if version != nil {
			de.Version = version
		}
		de.Edits = append(de.Edits, edits...)
	}

	v.Get("changes").ForEach(func(uri, edits gjson.Result) bool {
		var list []TextEdit
		edits.ForEach(func(_, e gjson.Result) bool {
			list = append(list, textEditFromJSON(e))
			return true
		})
		add(DocumentURI(uri.String()), nil, list)
		return true
	})

	v.Get("documentChanges").ForEach(func(_, change gjson.Result) bool {
		td := change.Get("textDocument")
		if !td.Exists() {
			// CreateFile / RenameFile / DeleteFile.
			return true
		}
		var version *int
		if ver := td.Get("version"); ver.Exists() && ver.Type != gjson.Null {
			n := int(ver.Int())
			version = &n
		}
		var list []TextEdit
		change.Get("edits").ForEach(func(_, e gjson.Result) bool {
			list = append(list, textEditFromJSON(e))
			return true
		})
		add(DocumentURI(td.Get("uri").String()), version, list)
		return true
	})

	out := &WorkspaceEdit{}
	for _, uri := range order {
		out.Documents = append(out.Documents, *merged[uri])
	}
	return out, nil
}

// ParseCodeActions decodes a codeAction result: an array whose entries are
// CodeActions or bare Commands.
func ParseCodeActions(raw []byte) ([]CodeAction, error) {
	v := gjson.ParseBytes(raw)
	if v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, ErrInvalidShape
	}

	var out []CodeAction
	var shapeErr error
	v.ForEach(func(_, item gjson.Result) bool {
		action := CodeAction{
			Title:       item.Get("title").String(),
			Kind:        item.Get("kind").String(),
			IsPreferred: item.Get("isPreferred").Bool(),
		}
		if edit := item.Get("edit"); edit.Exists() {
			we, err := ParseWorkspaceEdit([]byte(edit.Raw))
			if err != nil {
				shapeErr = err
				return false
			}
			action.Edit = we
		}
		if cmd := item.Get("command"); cmd.Exists() {
			if cmd.IsObject() {
				action.Command = commandFromJSON(cmd)
			} else {
				// A bare Command entry: command is a string at top level.
				action.Command = commandFromJSON(item)
			}
		}
		out = append(out, action)
		return true
	})
	return out, shapeErr
}

func commandFromJSON(v gjson.Result) *Command {
	cmd := &Command{
		Title:   v.Get("title").String(),
		Command: v.Get("command").String(),
	}
	v.Get("arguments").ForEach(func(_, a gjson.Result) bool {
		cmd.Arguments = append(cmd.Arguments, a.Raw)
		return true
	})
	return cmd
}

// ParseSymbols decodes a documentSymbol/workspaceSymbol result. Flat
// SymbolInformation arrays pass through; hierarchical DocumentSymbol trees
// are flattened with the parent's name as the container. uri names the
// document for DocumentSymbol results, which carry no URI of their own.
func ParseSymbols(raw []byte, uri DocumentURI) ([]Symbol, error) {
	v := gjson.ParseBytes(raw)
	if v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, ErrInvalidShape
	}

	var out []Symbol
	var walk func(v gjson.Result, container string)
	walk = func(v gjson.Result, container string) {
		v.ForEach(func(_, item gjson.Result) bool {
			if loc := item.Get("location"); loc.Exists() {
				out = append(out, Symbol{
					Name:          item.Get("name").String(),
					Kind:          int(item.Get("kind").Int()),
					ContainerName: item.Get("containerName").String(),
					Location:      locationFromJSON(loc),
				})
				return true
			}
			name := item.Get("name").String()
			r := item.Get("selectionRange")
			if !r.Exists() {
				r = item.Get("range")
			}
			out = append(out, Symbol{
				Name:          name,
				Kind:          int(item.Get("kind").Int()),
				ContainerName: container,
				Location:      Location{URI: uri, Range: rangeFromJSON(r)},
			})
			if children := item.Get("children"); children.IsArray() {
				walk(children, name)
			}
			return true
		})
	}
	walk(v, "")
	return out, nil
}

// ParseHover decodes a hover result's contents into plain text. The
// contents may be a string, a MarkedString object, a MarkupContent object,
// or an array of the first two.
func ParseHover(raw []byte) (string, error) {
	v := gjson.ParseBytes(raw)
	if v.Type == gjson.Null {
		return "", nil
	}
	if !v.IsObject() {
		return "", ErrInvalidShape
	}

	var parts []string
	var collect func(c gjson.Result)
	collect = func(c gjson.Result) {
		switch {
		case c.IsArray():
			c.ForEach(func(_, item gjson.Result) bool {
				collect(item)
				return true
			})
		case c.IsObject():
			parts = append(parts, c.Get("value").String())
		default:
			if s := c.String(); s != "" {
				parts = append(parts, s)
			}
		}
	}
	collect(v.Get("contents"))
	return strings.Join(parts, "\n\n"), nil
}

// ParseDiagnostics decodes the diagnostics array of a
// textDocument/publishDiagnostics notification's params.
func ParseDiagnostics(raw []byte) (DocumentURI, []Diagnostic, error) {
	v := gjson.ParseBytes(raw)
	if !v.IsObject() {
		return "", nil, ErrInvalidShape
	}
	uri := DocumentURI(v.Get("uri").String())

	var out []Diagnostic
	v.Get("diagnostics").ForEach(func(_, d gjson.Result) bool {
		out = append(out, Diagnostic{
			Range:    rangeFromJSON(d.Get("range")),
			Severity: int(d.Get("severity").Int()),
			Code:     d.Get("code").String(),
			Source:   d.Get("source").String(),
			Message:  d.Get("message").String(),
		})
		return true
	})
	return uri, out, nil
}
