package index

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Rebuild replaces the stored snapshot with snap in a single transaction.
// Readers see either the old contents or the new ones.
func (s *Store) Rebuild(snap *Snapshot) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
		}
		bs := make(map[string]*bolt.Bucket, len(allBuckets))
		for _, name := range allBuckets {
			b, err := tx.CreateBucket(name)
			if err != nil {
				return err
			}
			bs[string(name)] = b
		}
		metaB, warnB, infoB := bs[string(bMeta)], bs[string(bWarn)], bs[string(bInfo)]
		freshB, catB, tagB := bs[string(bIdxFresh)], bs[string(bIdxCat)], bs[string(bIdxTag)]

		for _, m := range snap.Posts {
			if strings.TrimSpace(m.ID) == "" {
				continue
			}
			mb, err := json.Marshal(m)
			if err != nil {
				return err
			}
			id := []byte(m.ID)
			if err := metaB.Put(id, mb); err != nil {
				return err
			}

			k := freshKey(m)
			if err := freshB.Put(k, []byte{1}); err != nil {
				return err
			}
			if cat := strings.TrimSpace(m.Category); cat != "" {
				sb, err := catB.CreateBucketIfNotExists([]byte(cat))
				if err != nil {
					return err
				}
				if err := sb.Put(k, []byte{1}); err != nil {
					return err
				}
			}
			for _, tag := range m.Tags {
				tag = strings.ToLower(strings.TrimSpace(tag))
				if tag == "" {
					continue
				}
				sb, err := tagB.CreateBucketIfNotExists([]byte(tag))
				if err != nil {
					return err
				}
				if err := sb.Put(k, []byte{1}); err != nil {
					return err
				}
			}
		}

		for i, w := range snap.Warnings {
			wb, err := json.Marshal(w)
			if err != nil {
				return err
			}
			if err := warnB.Put(seqKey(i), wb); err != nil {
				return err
			}
		}

		if err := infoB.Put(kBuiltAt, []byte(snap.BuiltAt.UTC().Format(time.RFC3339Nano))); err != nil {
			return err
		}
		return infoB.Put(kCount, []byte(strconv.Itoa(len(snap.Posts))))
	})
}
