// Package bootstrap renders the small HTML documents the capture and
// replay sides each need around the core (SPEC_FULL.md §4.11): the
// sandboxed iframe the Rebuilder/Replayer build into, and the page
// snippet that loads the capture bundle into a recorded page. Both are
// built with maragu.dev/gomponents, the templating library the whole
// retrieved corpus uses for HTML construction (comps, form, every
// examples/*), now that the teacher's own component framework (comps,
// form, router, appmanager) is out of scope for a capture/replay engine.
package bootstrap

import (
	"bytes"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/sessionlens/recorder/session"
)

// ReplayShell renders the sandboxed iframe's initial document: an
// <html lang="en"> whose head holds only a utf-8 charset meta and a
// "Session replay" title, with an empty body, ready for rebuild.Rebuilder to
// build into (spec.md §4.7 step 1 clears and rebuilds inside this
// exact shape).
func ReplayShell(cfg session.Config) Node {
	return Doctype(
		HTML(
			Lang("en"),
			Head(
				Meta(Charset("utf-8")),
				Title(Text("Session replay")),
			),
			Body(),
		),
	)
}

// RenderReplayShell renders ReplayShell to a byte slice, the form the
// dev server and the replay iframe's initial `srcdoc` need.
func RenderReplayShell(cfg session.Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := ReplayShell(cfg).Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CaptureSnippet renders the script tags a recorded page embeds to load
// the capture wasm bundle and start it.
func CaptureSnippet(wasmExecSrc, bundleSrc string) Node {
	return Group([]Node{
		Script(Src(wasmExecSrc)),
		Script(
			Type("module"),
			Raw(`
const go = new Go();
WebAssembly.instantiateStreaming(fetch(`+quote(bundleSrc)+`), go.importObject).then((result) => {
	go.run(result.instance);
});
`),
		),
	})
}

func quote(s string) string {
	var b bytes.Buffer
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
