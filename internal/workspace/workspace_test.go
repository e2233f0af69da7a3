package workspace

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	gcode "github.com/leftmike/gcsim"
)

const text = "%\r\n(part)  \r\nG0 X1 Y1 ; rapid\r\n\r\nG1 X2 F100\r\n%"

func TestExportVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.nc")
	err := os.WriteFile(path, []byte(text), 0644)
	if err != nil {
		t.Fatal(err)
	}

	ws, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s) failed: %s", path, err)
	}
	if ws.Program().Len() != 2 || ws.Revision() != 1 || ws.Path() != path {
		t.Errorf("Open(%s) got %d commands, revision %d", path, ws.Program().Len(), ws.Revision())
	}

	var buf bytes.Buffer
	err = ws.Export(&buf)
	if err != nil {
		t.Fatalf("Export failed: %s", err)
	}
	if buf.String() != text {
		t.Errorf("Export got %q want %q", buf.String(), text)
	}

	out := filepath.Join(dir, "copy.gcode")
	err = ws.Save(out)
	if err != nil {
		t.Fatalf("Save failed: %s", err)
	}
	saved, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(saved, []byte(text)) {
		t.Errorf("Save got %q want %q", saved, text)
	}
}

func TestOpenFail(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"part.stl", "part", "part.nc.bak"} {
		_, err := Open(filepath.Join(dir, name))
		if !errors.Is(err, ErrUnsupportedFile) {
			t.Errorf("Open(%s) got %v want %v", name, err, ErrUnsupportedFile)
		}
	}

	_, err := Open(filepath.Join(dir, "missing.NC"))
	if err == nil || errors.Is(err, ErrUnsupportedFile) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing) got %v", err)
	}
}

func TestSetText(t *testing.T) {
	ws := New("G0 X1\n")
	if ws.Revision() != 1 || ws.Program().Len() != 1 || ws.Path() != "" {
		t.Fatalf("New got revision %d, %d commands", ws.Revision(), ws.Program().Len())
	}

	p1 := ws.Program()
	p2 := ws.SetText("G0 X1\nG1 Y2\n")
	if ws.Revision() != 2 || p2.Len() != 2 || ws.Program() != p2 {
		t.Errorf("SetText got revision %d, %d commands", ws.Revision(), p2.Len())
	}
	if p1.Len() != 1 {
		t.Errorf("earlier program changed: %d commands", p1.Len())
	}
	if ws.Text() != "G0 X1\nG1 Y2\n" {
		t.Errorf("Text got %q", ws.Text())
	}

	changed, err := ws.Reload()
	if changed || err != nil {
		t.Errorf("Reload(no file) got %v, %v", changed, err)
	}
}

func TestSetTextConcurrent(t *testing.T) {
	ws := New("")

	// Text n has n commands, so each program can be matched to its text.
	const n = 20
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ws.SetText(strings.Repeat("G0 X1\n", i))
			snap := ws.Snapshot()
			if snap.Program.Len() != strings.Count(snap.Text, "\n") {
				t.Errorf("Snapshot got %d commands for %q", snap.Program.Len(), snap.Text)
			}
		}()
	}
	wg.Wait()

	snap := ws.Snapshot()
	if snap.Revision != n+1 || snap.Program != ws.Program() || snap.Text != ws.Text() {
		t.Errorf("Snapshot got revision %d", snap.Revision)
	}
	if snap.Program.Len() != strings.Count(snap.Text, "\n") {
		t.Errorf("Snapshot got %d commands for %q", snap.Program.Len(), snap.Text)
	}
}

func TestBuildOptions(t *testing.T) {
	start := gcode.Position{Z: 25}
	ws := New("G1 X1\n", WithBuildOptions(gcode.WithStart(start)))
	if ws.Program().Commands[0].Start != start {
		t.Errorf("Start got %s want %s", ws.Program().Commands[0].Start, start)
	}
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "part.ngc")
	err := os.WriteFile(path, []byte("G0 X1\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	ws, err := Open(path, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	revs := make(chan int, 10)
	err = ws.Watch(ctx, func(snap Snapshot) {
		if snap.Program.Len() == 3 && snap.Text == "G0 X1\nG0 X2\nG0 X3\n" {
			revs <- snap.Revision
		}
	})
	if err != nil {
		t.Fatalf("Watch failed: %s", err)
	}

	err = os.WriteFile(path, []byte("G0 X1\nG0 X2\nG0 X3\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	select {
	case rev := <-revs:
		if rev < 2 {
			t.Errorf("onChange got revision %d", rev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("onChange not called")
	}
	if ws.Text() != "G0 X1\nG0 X2\nG0 X3\n" {
		t.Errorf("Text got %q", ws.Text())
	}
}

func TestWatchNoFile(t *testing.T) {
	err := New("").Watch(context.Background(), nil)
	if err == nil {
		t.Errorf("Watch(no file) did not fail")
	}
}
