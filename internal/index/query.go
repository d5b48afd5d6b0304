package index

import (
	"encoding/json"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"kyon/internal/domain/content"
	"kyon/internal/ingest"
)

type ListOptions struct {
	Category      string
	Tag           string
	Page          int
	Size          int
	IncludeDrafts bool
}

// Info describes the stored snapshot.
type Info struct {
	BuiltAt time.Time
	Posts   int
}

func normalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 12
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

func (s *Store) GetMeta(id string) (content.PostMeta, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return content.PostMeta{}, ErrNotFound
	}
	var m content.PostMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bMeta)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &m)
	})
	return m, err
}

// Load reads the whole stored snapshot back. An empty store yields an empty
// snapshot, not an error.
func (s *Store) Load() (*Snapshot, error) {
	var (
		posts    []content.PostMeta
		warnings []ingest.Warning
		builtAt  time.Time
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		idx, metaB := tx.Bucket(bIdxFresh), tx.Bucket(bMeta)
		if idx != nil && metaB != nil {
			cur := idx.Cursor()
			for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
				m, ok := decodeMeta(metaB, idFromFreshKey(k))
				if ok {
					posts = append(posts, m)
				}
			}
		}
		if wb := tx.Bucket(bWarn); wb != nil {
			err := wb.ForEach(func(_, v []byte) error {
				var w ingest.Warning
				if err := json.Unmarshal(v, &w); err != nil {
					return err
				}
				warnings = append(warnings, w)
				return nil
			})
			if err != nil {
				return err
			}
		}
		if ib := tx.Bucket(bInfo); ib != nil {
			builtAt, _ = time.Parse(time.RFC3339Nano, string(ib.Get(kBuiltAt)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewSnapshot(posts, warnings, builtAt), nil
}

func (s *Store) Info() (Info, error) {
	var info Info
	err := s.db.View(func(tx *bolt.Tx) error {
		ib := tx.Bucket(bInfo)
		if ib == nil {
			return ErrNotFound
		}
		info.BuiltAt, _ = time.Parse(time.RFC3339Nano, string(ib.Get(kBuiltAt)))
		if mb := tx.Bucket(bMeta); mb != nil {
			info.Posts = mb.Stats().KeyN
		}
		return nil
	})
	return info, err
}

// List pages through the stored posts in freshness order, narrowed to one
// category or one tag when set. With both set the tag index is walked and
// filtered by category.
func (s *Store) List(opt ListOptions) ([]content.PostMeta, error) {
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)

	var out []content.PostMeta
	err := s.db.View(func(tx *bolt.Tx) error {
		metaB := tx.Bucket(bMeta)
		idx := listBucket(tx, opt)
		if idx == nil || metaB == nil {
			return nil
		}

		skip := (opt.Page - 1) * opt.Size
		cur := idx.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			m, ok := decodeMeta(metaB, idFromFreshKey(k))
			if !ok {
				continue
			}
			if m.Draft && !opt.IncludeDrafts {
				continue
			}
			if opt.Tag != "" && opt.Category != "" && m.Category != opt.Category {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			out = append(out, m)
			if len(out) >= opt.Size {
				break
			}
		}
		return nil
	})
	return out, err
}

func listBucket(tx *bolt.Tx, opt ListOptions) *bolt.Bucket {
	switch {
	case opt.Tag != "":
		parent := tx.Bucket(bIdxTag)
		if parent == nil {
			return nil
		}
		return parent.Bucket([]byte(strings.ToLower(strings.TrimSpace(opt.Tag))))
	case opt.Category != "":
		parent := tx.Bucket(bIdxCat)
		if parent == nil {
			return nil
		}
		return parent.Bucket([]byte(strings.TrimSpace(opt.Category)))
	}
	return tx.Bucket(bIdxFresh)
}

func decodeMeta(metaB *bolt.Bucket, id string) (content.PostMeta, bool) {
	var m content.PostMeta
	if id == "" {
		return m, false
	}
	v := metaB.Get([]byte(id))
	if v == nil {
		return m, false
	}
	if err := json.Unmarshal(v, &m); err != nil {
		return m, false
	}
	return m, true
}
