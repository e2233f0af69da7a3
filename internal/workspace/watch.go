package workspace

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the workspace when its file is written, calling onChange
// with each new revision. Editors often save by writing a new
// file and renaming it, so the directory is watched. Watch returns
// once the watcher is running; it stops when ctx is done.
func (ws *Workspace) Watch(ctx context.Context, onChange func(snap Snapshot)) error {
	if ws.path == "" {
		return errors.New("workspace: watch: no file")
	}
	path, err := filepath.Abs(ws.path)
	if err != nil {
		return fmt.Errorf("workspace: watch: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("workspace: watch: %w", err)
	}
	err = watcher.Add(filepath.Dir(path))
	if err != nil {
		watcher.Close()
		return fmt.Errorf("workspace: watch: %w", err)
	}

	ws.logger.Info("watching", "path", ws.path)
	go ws.watchLoop(ctx, watcher, path, onChange)
	return nil
}

func (ws *Workspace) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string,
	onChange func(snap Snapshot)) {

	defer watcher.Close()

	t := time.NewTimer(ws.debounce)
	t.Stop()
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				t.Reset(ws.debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			ws.logger.Error("watch", "error", err)
		case <-t.C:
			changed, err := ws.Reload()
			if err != nil {
				ws.logger.Error("reload", "error", err)
				continue
			}
			if changed {
				snap := ws.Snapshot()
				ws.logger.Info("reloaded", "path", ws.path, "revision", snap.Revision)
				if onChange != nil {
					onChange(snap)
				}
			}
		}
	}
}
