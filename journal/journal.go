// Package journal keeps a local record of files already imported, so that a
// re-run of the CLI on the same directory does not create duplicate assets.
package journal

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/boltdb/bolt"
)

var bucketImports = []byte("imports")

type Journal struct {
	db *bolt.DB
}

type Entry struct {
	Checksum   string    `json:"checksum"`
	ProjectID  string    `json:"projectId"`
	ExternalID string    `json:"externalId"`
	AssetID    string    `json:"assetId"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	ImportedAt time.Time `json:"importedAt"`
}

func Open(path string) (*Journal, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func key(projectID, checksum string) []byte {
	return []byte(projectID + "/" + checksum)
}

func (j *Journal) Record(e Entry) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketImports)
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		enc, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(key(e.ProjectID, e.Checksum), enc)
	})
}

// Seen reports whether the checksum was already imported into the project.
func (j *Journal) Seen(projectID, checksum string) (bool, error) {
	var seen bool
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketImports)
		if b == nil {
			return nil
		}
		seen = b.Get(key(projectID, checksum)) != nil
		return nil
	})
	return seen, err
}

func (j *Journal) List(projectID string) ([]Entry, error) {
	var entries []Entry
	prefix := []byte(projectID + "/")
	err := j.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketImports)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}

func (j *Journal) Forget(projectID, checksum string) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketImports)
		if b == nil {
			return nil
		}
		return b.Delete(key(projectID, checksum))
	})
}

// Checksum streams the file through md5 and returns the hex digest used as
// the journal identity of the file.
func Checksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	hash := md5.New()
	n, err := io.Copy(hash, f)
	if err != nil {
		return "", 0, fmt.Errorf("checksum %s: %w", path, err)
	}
	return fmt.Sprintf("%x", hash.Sum(nil)), n, nil
}
