// Package tailer reads newly appended lines from the watched bridge
// log and emits them as RawLine values for parsing.
package tailer

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/soluify/bridgeboard/internal/model"
	"github.com/soluify/bridgeboard/internal/watcher"
)

// Tailer follows watched log files and emits complete new lines.
type Tailer struct {
	mu     sync.Mutex
	files  map[string]*trackedFile
	out    chan model.RawLine
	ckpt   *Checkpoint
	events <-chan watcher.Event
	watch  *watcher.Watcher
}

type trackedFile struct {
	path   string
	file   *os.File
	offset int64
}

// New creates a Tailer that reads events from the given Watcher and
// resumes from the checkpointed offsets.
func New(w *watcher.Watcher, ckpt *Checkpoint) *Tailer {
	return &Tailer{
		files:  make(map[string]*trackedFile),
		out:    make(chan model.RawLine, 512),
		ckpt:   ckpt,
		events: w.Events,
		watch:  w,
	}
}

// Lines returns the channel where raw log lines are sent.
func (t *Tailer) Lines() <-chan model.RawLine {
	return t.out
}

// Start begins processing watcher events. Blocks until the context is
// cancelled, then saves the checkpoint and closes everything.
func (t *Tailer) Start(ctx context.Context) {
	defer close(t.out)

	for _, p := range t.watch.Paths() {
		t.openFile(p)
	}

	saveTicker := time.NewTicker(5 * time.Second)
	defer saveTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.saveCheckpoint()
			t.closeAll()
			return

		case ev, ok := <-t.events:
			if !ok {
				return
			}
			t.handleEvent(ev)

		case <-saveTicker.C:
			t.saveCheckpoint()
		}
	}
}

func (t *Tailer) handleEvent(ev watcher.Event) {
	switch {
	case ev.Op&fsnotify.Write != 0:
		t.readNewLines(ev.Path)

	case ev.Op&fsnotify.Create != 0:
		// The bridge recreated its log (rotation by the loguru sink).
		t.openFile(ev.Path)
		t.readNewLines(ev.Path)

	case ev.Op&fsnotify.Remove != 0, ev.Op&fsnotify.Rename != 0:
		t.closeFile(ev.Path)
		go t.reconnect(ev.Path)
	}
}

// openFile opens a file for tailing, resuming from the checkpointed
// offset, or from the end of the file when no checkpoint exists so a
// first run does not replay (and re-alert on) the whole history.
func (t *Tailer) openFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.files[path]; exists {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("tailer: cannot open %s: %v", path, err)
		return
	}

	var offset int64
	if saved, ok := t.ckpt.Get(path); ok {
		// A truncated file invalidates the saved offset.
		if info, err := f.Stat(); err == nil && saved <= info.Size() {
			offset = saved
		}
	} else {
		offset, _ = f.Seek(0, io.SeekEnd)
	}
	f.Seek(offset, io.SeekStart)

	t.files[path] = &trackedFile{path: path, file: f, offset: offset}
}

// readNewLines reads from the last offset to EOF and emits complete lines.
func (t *Tailer) readNewLines(path string) {
	t.mu.Lock()
	tf, ok := t.files[path]
	t.mu.Unlock()
	if !ok {
		return
	}

	scanner := bufio.NewScanner(tf.file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		t.out <- model.RawLine{Text: scanner.Text(), Source: path}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("tailer: read error on %s: %v", path, err)
	}

	pos, _ := tf.file.Seek(0, io.SeekCurrent)
	tf.offset = pos
	t.ckpt.Set(path, pos)
}

func (t *Tailer) closeFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tf, ok := t.files[path]; ok {
		tf.file.Close()
		delete(t.files, path)
	}
}

// reconnect polls for a file to reappear after rotation (up to 5 retries).
func (t *Tailer) reconnect(path string) {
	for i := 0; i < 5; i++ {
		time.Sleep(1 * time.Second)
		if _, err := os.Stat(path); err == nil {
			log.Printf("tailer: reconnected to rotated file: %s", path)
			t.ckpt.Set(path, 0)
			_ = t.watch.ReWatch(path)
			t.openFile(path)
			return
		}
	}
	log.Printf("tailer: gave up reconnecting to %s after 5 retries", path)
}

func (t *Tailer) saveCheckpoint() {
	if err := t.ckpt.Save(); err != nil {
		log.Printf("tailer: checkpoint save failed: %v", err)
	}
}

func (t *Tailer) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for path, tf := range t.files {
		tf.file.Close()
		delete(t.files, path)
	}
}
