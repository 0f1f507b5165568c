// Package resume validates, names, stores and serves uploaded resume
// artifacts. Addresses are server-generated; everything arriving back
// from a client is still treated as untrusted input on the read path.
package resume

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MaxSize is the upload ceiling for a single artifact.
const MaxSize = 5 << 20

var (
	ErrUnsupportedType = errors.New("resume: unsupported file type")
	ErrTooLarge        = errors.New("resume: file exceeds size limit")
	ErrInvalidAddress  = errors.New("resume: invalid artifact address")
	ErrNotFound        = errors.New("resume: artifact not found")
)

// contentTypes maps the accepted extensions to the media type served on
// retrieval. Content type is always derived from the stored extension,
// never from client-supplied headers.
var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Store keeps artifacts as flat files under a fixed root directory,
// addressed as {ownerID}_{unixTimestamp}_{sanitizedName}. The owner id
// prefix and the sanitizer together guarantee a generated address can
// never escape the root.
type Store struct {
	root string
	now  func() time.Time

	ownersMu sync.Mutex
	owners   map[string]*sync.Mutex
}

// NewStore creates the storage root if needed.
func NewStore(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("resume: storage root is not configured")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("resume: create storage root: %w", err)
	}
	return &Store{
		root:   root,
		now:    time.Now,
		owners: make(map[string]*sync.Mutex),
	}, nil
}

// WithClock overrides the timestamp source. Test use only.
func (s *Store) WithClock(fn func() time.Time) *Store {
	if fn != nil {
		s.now = fn
	}
	return s
}

// Info describes a stored artifact for retrieval.
type Info struct {
	OriginalName string
	ContentType  string
	Size         int64
}

// Save validates and stores an upload, returning the generated address.
// The write is all-or-nothing: data lands in a temp file that is
// renamed into place only once fully written, so a failed upload never
// leaves a partially written artifact behind an address.
func (s *Store) Save(ownerID, originalName string, size int64, r io.Reader) (string, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" || strings.ContainsAny(ownerID, "_/\\.") {
		return "", ErrInvalidAddress
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := contentTypes[ext]; !ok {
		return "", ErrUnsupportedType
	}
	if size > MaxSize {
		return "", ErrTooLarge
	}

	address := fmt.Sprintf("%s_%d_%s", ownerID, s.now().UTC().Unix(), sanitizeName(originalName))

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	// The declared size is advisory; the copy itself is capped too.
	written, err := io.Copy(tmp, io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", err
	}
	if written > MaxSize {
		return "", ErrTooLarge
	}
	if err := tmp.Sync(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, address)); err != nil {
		return "", err
	}
	return address, nil
}

// Replace stores a new artifact for the owner and deletes the previous
// one only after both the new write is durable and the caller's commit
// callback has recorded the new address. A commit failure removes the
// new blob and keeps the previous one, so no step leaves a record
// pointing at a missing artifact. Replaces for the same owner are
// serialized to avoid lost updates.
func (s *Store) Replace(ownerID, originalName string, size int64, r io.Reader, previousAddress string, commit func(newAddress string) error) (string, error) {
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	address, err := s.Save(ownerID, originalName, size, r)
	if err != nil {
		return "", err
	}
	if commit != nil {
		if err := commit(address); err != nil {
			_ = os.Remove(filepath.Join(s.root, address))
			return "", err
		}
	}
	if previousAddress != "" && previousAddress != address {
		// Only delete what provably belongs to this owner and resolves
		// inside the root.
		if owner, err := OwnerOf(previousAddress); err == nil && owner == ownerID {
			_ = os.Remove(filepath.Join(s.root, previousAddress))
		}
	}
	return address, nil
}

// Open returns the artifact content and metadata for an address. The
// address is validated before any filesystem access.
func (s *Store) Open(address string) (io.ReadCloser, Info, error) {
	if err := ValidateAddress(address); err != nil {
		return nil, Info{}, err
	}
	ext := strings.ToLower(filepath.Ext(address))
	contentType, ok := contentTypes[ext]
	if !ok {
		return nil, Info{}, ErrInvalidAddress
	}

	f, err := os.Open(filepath.Join(s.root, address))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Info{}, ErrNotFound
		}
		return nil, Info{}, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Info{}, err
	}
	return f, Info{
		OriginalName: OriginalName(address),
		ContentType:  contentType,
		Size:         stat.Size(),
	}, nil
}

// Remove deletes the artifact at the address, if present.
func (s *Store) Remove(address string) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.root, address))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// ValidateAddress rejects anything that could traverse outside the
// storage root: parent-directory tokens, path separators, hidden-file
// prefixes. Defense in depth even though addresses are server-generated.
func ValidateAddress(address string) error {
	if address == "" {
		return ErrInvalidAddress
	}
	if strings.Contains(address, "..") ||
		strings.ContainsAny(address, "/\\") ||
		strings.HasPrefix(address, ".") {
		return ErrInvalidAddress
	}
	if strings.Count(address, "_") < 2 {
		return ErrInvalidAddress
	}
	return nil
}

// OwnerOf extracts the owner subject id from an address.
func OwnerOf(address string) (string, error) {
	if err := ValidateAddress(address); err != nil {
		return "", err
	}
	owner, _, ok := strings.Cut(address, "_")
	if !ok || owner == "" {
		return "", ErrInvalidAddress
	}
	return owner, nil
}

// OriginalName recovers the human-readable file name from the trailing
// address segment for use in a download disposition hint.
func OriginalName(address string) string {
	parts := strings.SplitN(address, "_", 3)
	if len(parts) != 3 || parts[2] == "" {
		return address
	}
	return parts[2]
}

func sanitizeName(name string) string {
	// Strip any path the client declared, on either separator.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	cleaned := strings.Trim(b.String(), "-")
	if cleaned == "" {
		cleaned = "resume"
	}
	return cleaned + ext
}

func (s *Store) ownerLock(ownerID string) *sync.Mutex {
	s.ownersMu.Lock()
	defer s.ownersMu.Unlock()
	lock, ok := s.owners[ownerID]
	if !ok {
		lock = &sync.Mutex{}
		s.owners[ownerID] = lock
	}
	return lock
}
