// Package orphanage implements the grace-period bookkeeping the GC
// Driver uses before actually deleting unreachable content: a path is
// not deleted the first GC cycle it goes unmarked, only once it has
// stayed unmarked for at least collect_delay.
package orphanage

import (
	"os"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	deperrors "github.com/ravelin-dev/depotctl/pkg/errors"
)

// Record maps a depot path to the time it was first observed orphaned.
type Record map[string]time.Time

// Merge folds candidates (paths unmarked in this GC cycle) against old
// (the orphanage record from the previous cycle), returning the updated
// record and appending to deletionList every path that has now been
// orphaned for at least collectDelay.
//
// For each candidate path: free_time is old[path] if present, else now.
// new[path] is always set to free_time, whether or not the path is
// deleted this cycle — a path that crosses the threshold and is deleted
// is simply never a candidate again, so it falls out of new on the next
// cycle by construction.
func Merge(candidates []string, old Record, now time.Time, collectDelay time.Duration) (newRecord Record, deletionList []string) {
	newRecord = make(Record, len(candidates))
	for _, path := range candidates {
		freeTime, ok := old[path]
		if !ok {
			freeTime = now
		}
		newRecord[path] = freeTime
		if now.Sub(freeTime) >= collectDelay {
			deletionList = append(deletionList, path)
		}
	}
	sort.Strings(deletionList)
	return newRecord, deletionList
}

// Read loads the orphanage record at path: a flat TOML mapping of path
// to iso-datetime. A missing file is treated as an empty record.
func Read(path string) (Record, error) {
	raw := make(map[string]string)
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		if os.IsNotExist(err) {
			return make(Record), nil
		}
		return nil, deperrors.Wrap(deperrors.CodeParseFailure, err, "parse orphanage record %s", path)
	}
	r := make(Record, len(raw))
	for p, freeTime := range raw {
		t, err := time.Parse(time.RFC3339, freeTime)
		if err != nil {
			continue
		}
		r[p] = t
	}
	return r, nil
}

// Write persists r atomically as a flat path→iso-datetime mapping. An
// empty record still truncates any existing file, so a depot with
// nothing orphaned does not carry forward a stale record.
func Write(path string, r Record) error {
	raw := make(map[string]string, len(r))
	for p, t := range r {
		raw[p] = t.UTC().Format(time.RFC3339)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "create %s", tmp)
	}
	if err := toml.NewEncoder(f).Encode(raw); err != nil {
		f.Close()
		os.Remove(tmp)
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return deperrors.Wrap(deperrors.CodeIOFailure, err, "close %s", tmp)
	}
	return os.Rename(tmp, path)
}
