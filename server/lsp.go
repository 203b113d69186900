package server

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/gwbasic/session"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "gwbasic-lsp"

// runCommand runs the document's program and returns its output.
const runCommand = "gwbasic.run"

var log = commonlog.GetLogger("gwbasic.server")

// LspServer provides editor support for BASIC program listings.
type LspServer struct {
	worker *Worker

	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a language server whose run command uses a session
// built from opts.
func NewLSP(opts ...session.Option) *LspServer {
	s := &LspServer{
		worker:  NewWorker(opts...),
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentCompletion: s.textDocumentCompletion,
		TextDocumentHover:      s.textDocumentHover,

		WorkspaceExecuteCommand: s.workspaceExecuteCommand,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	commonlog.NewInfoMessage(0, "GW-BASIC LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}
	capabilities.HoverProvider = true
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{runCommand},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	s.worker.Stop()
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) document(uri protocol.DocumentUri) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.docs[string(uri)]
	return text, ok
}

// --- Language features ---

func (s *LspServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	prefix := extractPrefix(text, params.Position)
	if prefix == "" {
		return nil, nil
	}
	return complete(prefix), nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	text, ok := s.document(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	word := extractWord(text, params.Position)
	if word == "" {
		return nil, nil
	}
	return hover(text, word), nil
}

// workspaceExecuteCommand handles gwbasic.run with the document URI as
// its argument.
func (s *LspServer) workspaceExecuteCommand(ctx *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if params.Command != runCommand {
		return nil, fmt.Errorf("server: unknown command %q", params.Command)
	}
	if len(params.Arguments) != 1 {
		return nil, fmt.Errorf("server: %s takes a document URI", runCommand)
	}
	uri, _ := params.Arguments[0].(string)
	text, ok := s.document(protocol.DocumentUri(uri))
	if !ok {
		return nil, fmt.Errorf("server: document %q is not open", uri)
	}
	log.Infof("running %s", uri)
	return s.worker.Run(context.Background(), text)
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := []protocol.Diagnostic{}
	source := lspName
	for _, d := range Diagnose(text) {
		severity := protocol.DiagnosticSeverity(d.Severity)
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(d.Line), Character: protocol.UInteger(d.Start)},
				End:   protocol.Position{Line: protocol.UInteger(d.Line), Character: protocol.UInteger(d.End)},
			},
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		})
	}

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// --- Source text under the cursor ---

// sourceLine returns the document line at pos without its carriage
// return, and the cursor column clamped to it.
func sourceLine(text string, pos protocol.Position) (string, int, bool) {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return "", 0, false
	}
	line := strings.TrimRight(lines[pos.Line], "\r")
	return line, min(int(pos.Character), len(line)), true
}

func isLetter(c byte) bool { return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isNameChar accepts the characters of keywords, names and line numbers.
// A type sigil may only end a name.
func isNameChar(c byte) bool { return isLetter(c) || isDigit(c) || c == '.' }
func isSigil(c byte) bool { return strings.IndexByte("$%!#", c) >= 0 }

// inLiteral reports whether col falls inside a string constant or a
// remark, where nothing is a keyword.
func inLiteral(line string, col int) bool {
	quoted := false
	for i := 0; i < col; i++ {
		switch c := line[i]; {
		case c == '"':
			quoted = !quoted
		case quoted:
		case c == '\'':
			return true
		case (i == 0 || !isNameChar(line[i-1])) && strings.HasPrefix(strings.ToUpper(line[i:]), "REM"):
			return true
		}
	}
	return quoted
}

// extractPrefix returns the keyword fragment before the cursor for
// completion, or nothing inside strings and remarks.
func extractPrefix(text string, pos protocol.Position) string {
	line, col, ok := sourceLine(text, pos)
	if !ok || inLiteral(line, col) {
		return ""
	}
	start := col
	for start > 0 && isLetter(line[start-1]) {
		start--
	}
	return line[start:col]
}

// extractWord returns the keyword, name or line number under the cursor,
// including a trailing sigil.
func extractWord(text string, pos protocol.Position) string {
	line, col, ok := sourceLine(text, pos)
	if !ok || inLiteral(line, col) {
		return ""
	}
	// just past a sigil counts as on it
	if col > 0 && isSigil(line[col-1]) && (col == len(line) || !isNameChar(line[col])) {
		col--
	}
	start, end := col, col
	for start > 0 && isNameChar(line[start-1]) {
		start--
	}
	for end < len(line) && isNameChar(line[end]) {
		end++
	}
	if start == end {
		return ""
	}
	if end < len(line) && isSigil(line[end]) {
		end++
	}
	return line[start:end]
}

func boolPtr(b bool) *bool {
	return &b
}
