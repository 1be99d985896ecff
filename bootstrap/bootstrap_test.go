package bootstrap_test

import (
	"strings"
	"testing"

	"github.com/sessionlens/recorder/bootstrap"
	"github.com/sessionlens/recorder/session"
	"github.com/stretchr/testify/require"
)

func TestRenderReplayShell_ProducesMinimalDocument(t *testing.T) {
	out, err := bootstrap.RenderReplayShell(session.DefaultConfig())
	require.NoError(t, err)

	html := string(out)
	require.True(t, strings.HasPrefix(html, "<!doctype html>"))
	require.Contains(t, html, "<html lang=\"en\">")
	require.Contains(t, html, "<head>")
	require.Contains(t, html, "<body></body>")
}

func TestCaptureSnippet_RendersBothScriptTags(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, bootstrap.CaptureSnippet("/wasm_exec.js", "/capture.wasm").Render(&buf))

	out := buf.String()
	require.Contains(t, out, `src="/wasm_exec.js"`)
	require.Contains(t, out, `type="module"`)
	require.Contains(t, out, `/capture.wasm`)
}
