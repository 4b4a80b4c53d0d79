// Package backups persists backup documents in the key-value store and owns
// the naming convention and summary aggregation for stored backups.
package backups

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"habitvault/internal/models"
	"habitvault/internal/shared"
	"habitvault/internal/store"
)

// KeyPrefix namespaces every stored backup document.
const KeyPrefix = "habitica-backup_"

// Record is a stored backup plus its storage key and derived per-type task
// counts. Records exist only as a read-time projection; the counts are
// recomputed on every listing, never persisted.
type Record struct {
	Key       string            `json:"key"`
	CreatedAt time.Time         `json:"createdAt"`
	Username  string            `json:"username"`
	Counts    models.TaskCounts `json:"taskCounts"`
	Backup    *models.Backup    `json:"-"`
}

// Repository reads and writes backup documents through an injected [store.Store].
type Repository struct {
	store  store.Store
	logger *log.Logger

	mu      sync.Mutex
	lastKey int64 // millisecond suffix of the most recent key this session
}

// NewRepository creates a Repository over the given store.
func NewRepository(s store.Store, logger *log.Logger) *Repository {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Repository{store: s, logger: logger}
}

// nextKey derives a fresh backup key from the current time. Saves landing in
// the same millisecond are bumped forward so keys stay distinct and
// monotonic within a session.
func (r *Repository) nextKey() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	millis := time.Now().UnixMilli()
	if millis <= r.lastKey {
		millis = r.lastKey + 1
	}
	r.lastKey = millis
	return fmt.Sprintf("%s%d", KeyPrefix, millis)
}

// Save serializes the document and persists it under a freshly generated key.
// The store notifies its observers of the change.
func (r *Repository) Save(backup *models.Backup) (string, error) {
	data, err := backup.Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to serialize backup: %w", err)
	}

	key := r.nextKey()
	if err := r.store.Set(key, string(data)); err != nil {
		return "", fmt.Errorf("failed to persist backup: %w", err)
	}

	r.logger.Debug("backup saved", "key", key, "tasks", len(backup.Tasks))
	return key, nil
}

// Delete removes a stored backup. The store notifies its observers.
func (r *Repository) Delete(key string) error {
	if err := r.store.Delete(key); err != nil {
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

// Load retrieves and decodes one stored backup by key.
func (r *Repository) Load(key string) (*models.Backup, error) {
	value, err := r.store.Get(key)
	if err != nil {
		return nil, err
	}
	return models.UnmarshalBackup([]byte(value))
}

// LoadFromFile decodes a user-supplied backup file, surfacing parse and
// validation errors for display. The store is not touched.
func (r *Repository) LoadFromFile(data []byte) (*models.Backup, error) {
	return models.UnmarshalBackup(data)
}

// List scans all stored backups, derives their summaries, and returns them
// sorted by creation time descending (most recent first).
//
// A corrupt entry is skipped and logged rather than failing the listing; one
// bad blob must not hide the rest.
func (r *Repository) List() ([]Record, error) {
	keys, err := r.store.Keys(KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to scan backup keys: %w", err)
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		value, err := r.store.Get(key)
		if err != nil {
			r.logger.Warn("skipping unreadable backup entry", "key", key, "error", err)
			continue
		}

		backup, err := models.UnmarshalBackup([]byte(value))
		if err != nil {
			r.logger.Warn("skipping corrupt backup entry", "key", key, "error", err)
			continue
		}

		records = append(records, Record{
			Key:       key,
			CreatedAt: backup.Metadata.CreatedAt,
			Username:  backup.Metadata.Username,
			Counts:    backup.Counts(),
			Backup:    backup,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}
