package dbgp

import (
	"bytes"
	"fmt"
	"io"

	"github.com/beevik/etree"
)

// Namespaces the engine uses for its extension elements.
var xdebugNamespaces = map[string]bool{
	"http://xdebug.org/dbgp/xdebug":  true,
	"https://xdebug.org/dbgp/xdebug": true,
}

const (
	attrFileURI  = "fileuri"
	attrFilename = "filename"
	tagStack     = "stack"
	tagMessage   = "message"
)

// PathContractor maps an engine path back to the IDE's view.
type PathContractor interface {
	Contract(path string) string
}

// RewriteResponse rewrites the file references of one engine payload: the
// root's fileuri or, when that is empty, the filename of every stack frame,
// and independently the filename of xdebug:message elements. It returns the
// re-serialized payload and the number of attributes whose value changed.
func RewriteResponse(payload []byte, c PathContractor) ([]byte, int, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return []byte{}, 0, nil
	}
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = passthroughCharset
	doc.ReadSettings.PreserveCData = true
	if err := doc.ReadFromBytes(payload); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedPacket, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, 0, fmt.Errorf("%w: no root element", ErrMalformedPacket)
	}

	rewritten := 0
	contract := func(a *etree.Attr) {
		if a == nil {
			return
		}
		if v := c.Contract(a.Value); v != a.Value {
			a.Value = v
			rewritten++
		}
	}

	for _, msg := range root.ChildElements() {
		if msg.Tag == tagMessage && xdebugNamespaces[msg.NamespaceURI()] {
			contract(msg.SelectAttr(attrFilename))
		}
	}

	if uri := root.SelectAttr(attrFileURI); uri != nil && uri.Value != "" {
		contract(uri)
	} else {
		for _, frame := range root.SelectElements(tagStack) {
			contract(frame.SelectAttr(attrFilename))
		}
	}

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to serialize response: %w", err)
	}
	return bytes.TrimSpace(out), rewritten, nil
}

// passthroughCharset hands non-UTF-8 payloads through byte for byte. The
// engine declares iso-8859-1 but the paths it reports are what the
// filesystem returned, so they are forwarded unchanged.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}
