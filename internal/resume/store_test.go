package resume

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}

func TestSaveAndOpen(t *testing.T) {
	store := newTestStore(t).WithClock(func() time.Time {
		return time.Unix(1700000000, 0)
	})

	payload := []byte("%PDF-1.4 fake resume")
	address, err := store.Save("owner1", "My Resume.pdf", int64(len(payload)), bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if address != "owner1_1700000000_My-Resume.pdf" {
		t.Fatalf("unexpected address: %s", address)
	}

	rc, info, err := store.Open(address)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatal("stored content mismatch")
	}
	if info.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type: %s", info.ContentType)
	}
	if info.OriginalName != "My-Resume.pdf" {
		t.Fatalf("unexpected original name: %s", info.OriginalName)
	}
	if info.Size != int64(len(payload)) {
		t.Fatalf("unexpected size: %d", info.Size)
	}
}

func TestSaveRejectsUnsupportedType(t *testing.T) {
	store := newTestStore(t)
	for _, name := range []string{"evil.exe", "script.sh", "resume", "cv.pdf.js"} {
		if _, err := store.Save("owner1", name, 4, strings.NewReader("data")); !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("Save(%q): expected ErrUnsupportedType, got %v", name, err)
		}
	}
	entries, err := os.ReadDir(storeRoot(t, store))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no blobs stored, found %d", len(entries))
	}
}

func TestSaveRejectsOversizedPayload(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save("owner1", "cv.pdf", MaxSize+1, strings.NewReader("x")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("declared size: expected ErrTooLarge, got %v", err)
	}

	// A lying declared size must still be caught by the capped copy.
	big := bytes.Repeat([]byte("a"), MaxSize+1)
	if _, err := store.Save("owner1", "cv.pdf", 100, bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("actual size: expected ErrTooLarge, got %v", err)
	}
	entries, err := os.ReadDir(storeRoot(t, store))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no blobs stored, found %d", len(entries))
	}
}

func TestSaveSanitizesOriginalName(t *testing.T) {
	store := newTestStore(t)
	address, err := store.Save("owner1", "../../etc/passwd uploads/..\\cv v2.docx", 4, strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := ValidateAddress(address); err != nil {
		t.Fatalf("generated address fails validation: %s: %v", address, err)
	}
	if strings.ContainsAny(address, "/\\") || strings.Contains(address, "..") {
		t.Fatalf("address carries traversal tokens: %s", address)
	}
	if !strings.HasSuffix(address, ".docx") {
		t.Fatalf("extension lost: %s", address)
	}
}

func TestOpenRejectsTraversalBeforeIO(t *testing.T) {
	store := newTestStore(t)
	for _, address := range []string{
		"",
		"../secrets",
		"owner1_17_..cv.pdf",
		"owner1_17_/etc/passwd",
		"owner1_17_a\\b.pdf",
		"..\\owner1_17_cv.pdf",
		".hidden_17_cv.pdf",
		"plainname.pdf",
	} {
		if _, _, err := store.Open(address); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("Open(%q): expected ErrInvalidAddress, got %v", address, err)
		}
	}
}

func TestOpenMissingArtifact(t *testing.T) {
	store := newTestStore(t)
	if _, _, err := store.Open("owner1_1700000000_gone.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplaceKeepsOldUntilNewIsDurable(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save("owner1", "cv.pdf", 5, strings.NewReader("first"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A failed replace must leave the previous artifact intact.
	if _, err := store.Replace("owner1", "cv.exe", 6, strings.NewReader("second"), first, nil); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if _, _, err := store.Open(first); err != nil {
		t.Fatalf("previous artifact lost after failed replace: %v", err)
	}

	second, err := store.Replace("owner1", "cv2.pdf", 6, strings.NewReader("second"), first, nil)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, _, err := store.Open(second); err != nil {
		t.Fatalf("new artifact unreadable: %v", err)
	}
	if _, _, err := store.Open(first); !errors.Is(err, ErrNotFound) {
		t.Fatalf("previous artifact not deleted: %v", err)
	}
}

func TestReplaceCommitFailureKeepsPrevious(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save("owner1", "cv.pdf", 5, strings.NewReader("first"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	commitErr := errors.New("record write failed")
	_, err = store.Replace("owner1", "cv2.pdf", 6, strings.NewReader("second"), first, func(string) error {
		return commitErr
	})
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected commit error surfaced, got %v", err)
	}

	if _, _, err := store.Open(first); err != nil {
		t.Fatalf("previous artifact lost after failed commit: %v", err)
	}
	entries, err := os.ReadDir(storeRoot(t, store))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the previous blob, found %d entries", len(entries))
	}
}

func TestReplaceNeverDeletesAnotherOwnersArtifact(t *testing.T) {
	store := newTestStore(t)
	theirs, err := store.Save("owner2", "cv.pdf", 6, strings.NewReader("theirs"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Replace("owner1", "cv.pdf", 4, strings.NewReader("mine"), theirs, nil); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, _, err := store.Open(theirs); err != nil {
		t.Fatalf("foreign artifact deleted: %v", err)
	}
}

func TestConcurrentReplacesSerialize(t *testing.T) {
	store := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Replace("owner1", "cv.pdf", 4, strings.NewReader("data"), "", nil); err != nil {
				t.Errorf("Replace: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestOwnerOfAndOriginalName(t *testing.T) {
	owner, err := OwnerOf("owner1_1700000000_my_old_cv.pdf")
	if err != nil || owner != "owner1" {
		t.Fatalf("OwnerOf: owner=%q err=%v", owner, err)
	}
	if got := OriginalName("owner1_1700000000_my_old_cv.pdf"); got != "my_old_cv.pdf" {
		t.Fatalf("OriginalName: %q", got)
	}
	if _, err := OwnerOf("../x"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func storeRoot(t *testing.T, store *Store) string {
	t.Helper()
	return store.root
}
