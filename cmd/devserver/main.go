// Command devserver rebuilds and serves one of the examples under
// examples/, live-reloading the browser whenever its sources change.
// Adapted from the teacher's spec/dev.go dev-loop tool, swapping its
// single hardcoded "counter" example default for "recorder-demo" and
// its ad hoc static/wasm_exec.js handlers for internal/devserver's
// shared Server/BuildWASM. The repository ships no examples/ directory,
// so the default "recorder-demo" names an example that is not present.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sessionlens/recorder/bootstrap"
	"github.com/sessionlens/recorder/internal/devserver"
	"github.com/sessionlens/recorder/session"
)

// sseHub fans reload notifications out to connected browser tabs over
// server-sent events.
type sseHub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func newSSEHub() *sseHub { return &sseHub{clients: make(map[chan string]struct{})} }

func (h *sseHub) addClient(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[ch] = struct{}{}
}

func (h *sseHub) removeClient(ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, ch)
	close(ch)
}

func (h *sseHub) broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *sseHub) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := make(chan string, 8)
	h.addClient(ch)
	defer h.removeClient(ch)

	w.Write([]byte("event: ping\ndata: ok\n\n"))
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()
		}
	}
}

func watchAndReload(ctx context.Context, hub *sseHub, example string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	paths := []string{
		filepath.Join("examples", example),
		"session", "registry", "serialize", "rebuild", "replay",
		"observe", "mutationstream", "wire", "transport", "bootstrap",
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			_ = watcher.Add(p)
			continue
		}
		filepath.Walk(p, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if strings.HasPrefix(info.Name(), ".") {
					return filepath.SkipDir
				}
				_ = watcher.Add(path)
			}
			return nil
		})
	}

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	rebuild := func() {
		if err := devserver.BuildWASM(example); err != nil {
			log.Println("[dev] build failed:", err)
			return
		}
		hub.broadcast("reload")
		log.Println("[dev] reload signaled")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-watcher.Events:
			name := strings.ToLower(ev.Name)
			if !(strings.HasSuffix(name, ".go") || strings.HasSuffix(name, ".html")) {
				continue
			}
			debounce.Reset(200 * time.Millisecond)
		case <-debounce.C:
			rebuild()
		case err := <-watcher.Errors:
			log.Println("[dev] watcher error:", err)
		}
	}
}

// serveReplayFrame renders the sandboxed replay iframe's initial
// document, the shell a replay session's Rebuilder builds a captured
// page into (spec.md §4.7, §4.11).
func serveReplayFrame(w http.ResponseWriter, r *http.Request) {
	out, err := bootstrap.RenderReplayShell(session.DefaultConfig())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(out)
}

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	example := flag.String("example", "recorder-demo", "example directory under ./examples to serve")
	addr := flag.String("addr", "localhost:8080", "address to listen on")
	flag.Parse()

	exampleDir := filepath.Join("examples", *example)
	if info, err := os.Stat(exampleDir); err != nil || !info.IsDir() {
		log.Fatalf("example %q not found at %s", *example, exampleDir)
	}
	if _, err := os.Stat(filepath.Join(exampleDir, "main.go")); err != nil {
		log.Fatalf("example %q missing main.go", *example)
	}

	server := devserver.NewServer(*example, *addr)
	if err := server.Start(); err != nil {
		log.Fatalf("failed to start dev server: %v", err)
	}
	log.Printf("==> Serving %s (example: %s)\n", server.URL(), *example)

	hub := newSSEHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/__livereload", hub.handleSSE)
	mux.HandleFunc("/replay-frame", serveReplayFrame)
	liveReload := &http.Server{Addr: ":8090", Handler: mux}
	go func() {
		if err := liveReload.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Println("live-reload server error:", err)
		}
	}()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go func() {
		if err := watchAndReload(ctx, hub, *example); err != nil {
			log.Println("watch error:", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("shutting down...")
	stop()
	_ = server.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = liveReload.Shutdown(shutdownCtx)
}
