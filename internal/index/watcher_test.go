package index

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/storage"
)

// watcherTestEnv sets up a content dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return root, store, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) record(kind, slug string) {
	l.mu.Lock()
	l.events = append(l.events, kind+":"+slug)
	l.mu.Unlock()
}

func (l *eventLog) has(want string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.events {
		if e == want {
			return true
		}
	}
	return false
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var log eventLog
	go Watch(ctx, db, store, root, quietLogger(), log.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, "neu.md"), []byte("---\ntitle: Neu\n---\n\nText"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("neu")
		return cs != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return log.has("created:neu")
	}, "expected created:neu callback")
}

func TestWatcher_IgnoresTempAndHidden(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(root, storage.TempPrefix+"x.md"), []byte("tmp"), 0o644)
	_ = os.MkdirAll(filepath.Join(root, ".git"), 0o755)
	_ = os.WriteFile(filepath.Join(root, ".git", "hidden.md"), []byte("h"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "sichtbar.md"), []byte("v"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("sichtbar")
		return cs != ""
	}, "visible file not indexed")

	all, _ := db.AllChecksums()
	if len(all) != 1 {
		t.Errorf("expected only the visible module indexed, got %v", all)
	}
}

func TestIndexIfChanged(t *testing.T) {
	db := testDB(t)
	data := []byte("---\ntitle: Gleich\n---\n\nText")

	changed, created, err := indexIfChanged(db, "gleich", data)
	if err != nil || !changed || !created {
		t.Fatalf("first index: changed=%v created=%v err=%v", changed, created, err)
	}
	changed, _, err = indexIfChanged(db, "gleich", data)
	if err != nil || changed {
		t.Errorf("identical content: changed=%v err=%v, want no change", changed, err)
	}
	changed, created, err = indexIfChanged(db, "gleich", append(data, '!'))
	if err != nil || !changed || created {
		t.Errorf("edit: changed=%v created=%v err=%v, want update", changed, created, err)
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(root, "kapitel-2")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "tief.md"), []byte("# Tief"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("kapitel-2/tief")
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(root, "weg.md"), []byte("# Weg"), 0o644)
	_ = Sync(db, store, quietLogger())

	cs, _ := db.GetChecksum("weg")
	if cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var log eventLog
	go Watch(ctx, db, store, root, quietLogger(), log.record)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(root, "weg.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("weg")
		return cs == "" && log.has("deleted:weg")
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	root, store, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(root, "alt.md"), []byte("# Umbenennen"), 0o644)
	_ = Sync(db, store, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, root, quietLogger(), nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(root, "alt.md"), filepath.Join(root, "neu.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("alt")
		newCS, _ := db.GetChecksum("neu")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old slug should be removed and new slug indexed")
}
