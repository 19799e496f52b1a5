package term

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// document is the mutable state scripts operate on. It belongs to the
// native loop goroutine; the tea program only ever sees snapshots.
type document struct {
	title  string
	lines  []string
	status string
}

type snapshot struct {
	title  string
	lines  []string
	status string
}

func (d *document) snapshot() snapshot {
	lines := make([]string, len(d.lines))
	copy(lines, d.lines)
	return snapshot{title: d.title, lines: lines, status: d.status}
}

// evaluator runs scripts against one document through a goja runtime that
// exposes a small document/window API:
//
//	document.title = 'x'
//	document.body.append(line), document.body.setText(text),
//	document.body.clear(), document.setStatus(text), window.print(line)
type evaluator struct {
	vm  *goja.Runtime
	doc *document
}

func newEvaluator(title string, content string) (*evaluator, error) {
	doc := &document{title: title, lines: splitLines(content)}
	vm := goja.New()

	docObj := vm.NewObject()
	getter := vm.ToValue(func() string { return doc.title })
	setter := vm.ToValue(func(value string) { doc.title = value })
	if err := docObj.DefineAccessorProperty("title", getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
		return nil, fmt.Errorf("bind document.title: %w", err)
	}

	body := vm.NewObject()
	if err := body.Set("append", func(line string) { doc.lines = append(doc.lines, line) }); err != nil {
		return nil, fmt.Errorf("bind document.body.append: %w", err)
	}
	if err := body.Set("setText", func(text string) { doc.lines = splitLines(text) }); err != nil {
		return nil, fmt.Errorf("bind document.body.setText: %w", err)
	}
	if err := body.Set("clear", func() { doc.lines = nil }); err != nil {
		return nil, fmt.Errorf("bind document.body.clear: %w", err)
	}
	if err := docObj.Set("body", body); err != nil {
		return nil, fmt.Errorf("bind document.body: %w", err)
	}
	if err := docObj.Set("setStatus", func(text string) { doc.status = text }); err != nil {
		return nil, fmt.Errorf("bind document.setStatus: %w", err)
	}
	if err := vm.Set("document", docObj); err != nil {
		return nil, fmt.Errorf("bind document: %w", err)
	}

	window := vm.NewObject()
	if err := window.Set("print", func(line string) { doc.lines = append(doc.lines, line) }); err != nil {
		return nil, fmt.Errorf("bind window.print: %w", err)
	}
	if err := vm.Set("window", window); err != nil {
		return nil, fmt.Errorf("bind window: %w", err)
	}

	return &evaluator{vm: vm, doc: doc}, nil
}

// run evaluates the script and returns the document state afterwards. A
// failing script may still have applied partial effects; the snapshot
// reflects them.
func (e *evaluator) run(script string) (snapshot, error) {
	_, err := e.vm.RunString(script)
	return e.doc.snapshot(), err
}

func splitLines(content string) []string {
	if content == "" {
		return nil
	}

	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}
