package snapshot

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Pessina/minredis/internal/storage/memory"
	"github.com/Pessina/minredis/pkg/crypto/adaptive"
)

var magicBytes = []byte("MRSNAP01")

const (
	fileExtension = ".snap"
	tempExtension = ".tmp"
	checksumSize  = sha256.Size
	headerVersion = 1

	// keyInfo separates the snapshot key from other keys derived from the
	// same operator secret.
	keyInfo = "minredis snapshot v1"
)

var (
	ErrInvalidMagic     = errors.New("snapshot: invalid magic bytes")
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
	ErrNotFound         = errors.New("snapshot: not found")
	ErrInvalidName      = errors.New("snapshot: invalid name")
	ErrEncrypted        = errors.New("snapshot: snapshot is encrypted and no key is configured")
)

type header struct {
	Version   int   `json:"version"`
	CreatedAt int64 `json:"created_at"`
	KeyCount  int   `json:"key_count"`
	Encrypted bool  `json:"encrypted"`
}

type record struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Expiry *int64 `json:"expiry,omitempty"`
}

// Config configures a Manager.
type Config struct {
	// Dir holds the snapshot files. It is created on first save.
	Dir string

	// Cipher seals the data block when non-nil.
	Cipher *adaptive.Cipher
}

// CipherFromKey derives the snapshot cipher from an operator secret.
// An empty secret disables encryption and returns nil.
func CipherFromKey(secret string) (*adaptive.Cipher, error) {
	if secret == "" {
		return nil, nil
	}
	c, err := adaptive.FromSecret([]byte(secret), keyInfo)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return c, nil
}

// Manager saves and loads snapshots in a single directory.
type Manager struct {
	dir    string
	cipher *adaptive.Cipher
	now    func() time.Time
}

// NewManager returns a Manager for cfg. The directory is not touched until
// the first Save.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("snapshot: dir is required")
	}
	return &Manager{dir: cfg.Dir, cipher: cfg.Cipher, now: time.Now}, nil
}

// Dir returns the snapshot directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Info describes a snapshot file.
type Info struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	KeyCount  int       `json:"key_count"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum,omitempty"`
	Encrypted bool      `json:"encrypted"`
}

// Save writes cells to the snapshot called name, replacing any previous
// snapshot with that name.
func (m *Manager) Save(name string, cells map[string]memory.Cell) (*Info, error) {
	finalPath, err := m.path(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}

	keys := make([]string, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]record, 0, len(keys))
	for _, k := range keys {
		c := cells[k]
		r := record{Key: k, Value: c.Value}
		if c.HasExpiry() {
			sec := c.Expiry.Unix()
			r.Expiry = &sec
		}
		records = append(records, r)
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal records: %w", err)
	}
	if m.cipher != nil {
		if data, err = m.cipher.Seal(data, magicBytes); err != nil {
			return nil, fmt.Errorf("snapshot: encrypt: %w", err)
		}
	}

	now := m.now()
	hdr, err := json.Marshal(header{
		Version:   headerVersion,
		CreatedAt: now.Unix(),
		KeyCount:  len(records),
		Encrypted: m.cipher != nil,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal header: %w", err)
	}

	tempPath := finalPath + tempExtension
	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return nil, fmt.Errorf("snapshot: create temp file: %w", err)
	}
	defer os.Remove(tempPath)

	sum, err := writeFile(f, hdr, data)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("snapshot: close: %w", cerr)
	}
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(tempPath)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		return nil, fmt.Errorf("snapshot: rename: %w", err)
	}

	return &Info{
		Name:      name,
		Path:      finalPath,
		KeyCount:  len(records),
		CreatedAt: time.Unix(now.Unix(), 0),
		Size:      stat.Size(),
		Checksum:  hex.EncodeToString(sum),
		Encrypted: m.cipher != nil,
	}, nil
}

func writeFile(f *os.File, hdr, data []byte) ([]byte, error) {
	hash := sha256.New()
	bw := bufio.NewWriter(f)
	w := io.MultiWriter(bw, hash)

	var lenBuf [4]byte
	if _, err := w.Write(magicBytes); err != nil {
		return nil, fmt.Errorf("snapshot: write magic: %w", err)
	}
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(hdr)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return nil, fmt.Errorf("snapshot: write header length: %w", err)
	}
	if _, err := w.Write(hdr); err != nil {
		return nil, fmt.Errorf("snapshot: write header: %w", err)
	}
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return nil, fmt.Errorf("snapshot: write data length: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("snapshot: write data: %w", err)
	}

	// The trailer is not part of the hash.
	sum := hash.Sum(nil)
	if _, err := bw.Write(sum); err != nil {
		return nil, fmt.Errorf("snapshot: write checksum: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return nil, fmt.Errorf("snapshot: flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("snapshot: sync: %w", err)
	}
	return sum, nil
}

// Load reads the snapshot called name. Expiry instants are restored with
// second precision; keys already past their expiry are still returned and
// left for the store to expire lazily.
func (m *Manager) Load(name string) (map[string]memory.Cell, *Info, error) {
	path, err := m.path(name)
	if err != nil {
		return nil, nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, nil, fmt.Errorf("snapshot: read: %w", err)
	}

	hdr, data, sum, err := parseFile(raw)
	if err != nil {
		return nil, nil, err
	}

	if hdr.Encrypted {
		if m.cipher == nil {
			return nil, nil, ErrEncrypted
		}
		if data, err = m.cipher.Open(data, magicBytes); err != nil {
			return nil, nil, fmt.Errorf("snapshot: decrypt: %w", err)
		}
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("snapshot: unmarshal records: %w", err)
	}

	cells := make(map[string]memory.Cell, len(records))
	for _, r := range records {
		c := memory.Cell{Value: r.Value}
		if r.Expiry != nil {
			c.Expiry = time.Unix(*r.Expiry, 0)
		}
		cells[r.Key] = c
	}

	return cells, &Info{
		Name:      name,
		Path:      path,
		KeyCount:  len(records),
		CreatedAt: time.Unix(hdr.CreatedAt, 0),
		Size:      int64(len(raw)),
		Checksum:  hex.EncodeToString(sum),
		Encrypted: hdr.Encrypted,
	}, nil
}

func parseFile(raw []byte) (*header, []byte, []byte, error) {
	if len(raw) < len(magicBytes)+checksumSize {
		return nil, nil, nil, ErrChecksumMismatch
	}
	body, sum := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	want := sha256.Sum256(body)
	if !bytes.Equal(want[:], sum) {
		return nil, nil, nil, ErrChecksumMismatch
	}
	if !bytes.HasPrefix(body, magicBytes) {
		return nil, nil, nil, ErrInvalidMagic
	}
	rest := body[len(magicBytes):]

	hdrJSON, rest, err := readBlock(rest, "header")
	if err != nil {
		return nil, nil, nil, err
	}
	var hdr header
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return nil, nil, nil, fmt.Errorf("snapshot: unmarshal header: %w", err)
	}
	if hdr.Version != headerVersion {
		return nil, nil, nil, fmt.Errorf("snapshot: unsupported version %d", hdr.Version)
	}

	data, rest, err := readBlock(rest, "data")
	if err != nil {
		return nil, nil, nil, err
	}
	if len(rest) != 0 {
		return nil, nil, nil, fmt.Errorf("snapshot: %d trailing bytes", len(rest))
	}
	return &hdr, data, sum, nil
}

func readBlock(b []byte, what string) (block, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, fmt.Errorf("snapshot: short %s length", what)
	}
	n := binary.BigEndian.Uint32(b[:4])
	b = b[4:]
	if uint64(len(b)) < uint64(n) {
		return nil, nil, fmt.Errorf("snapshot: short %s block", what)
	}
	return b[:n], b[n:], nil
}

// List returns the snapshots in the directory sorted by name. A missing
// directory yields an empty list.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: read dir: %w", err)
	}

	var out []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExtension) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:      strings.TrimSuffix(e.Name(), fileExtension),
			Path:      filepath.Join(m.dir, e.Name()),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Remove deletes the snapshot called name.
func (m *Manager) Remove(name string) error {
	path, err := m.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("snapshot: remove: %w", err)
	}
	return nil
}

// ValidName reports whether name can be used as a snapshot name.
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}

func (m *Manager) path(name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(m.dir, name+fileExtension), nil
}
