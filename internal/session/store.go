package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/trilhalab/portalctl/internal/errors"
	"github.com/trilhalab/portalctl/internal/log"
	"github.com/trilhalab/portalctl/internal/token"
)

// slotFile is the single persisted session slot.
const slotFile = "auth.json"

// Store persists the current session to one JSON file and notifies
// subscribers when another process mutates it.
//
// There is no locking across processes: last writer wins, and readers
// self-heal on corrupt or expired data instead of erroring.
type Store struct {
	dir    string
	path   string
	logger *log.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	subs    []chan struct{}
	done    chan struct{}
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.NewStateDirError(dir, err)
	}
	return &Store{
		dir:    dir,
		path:   filepath.Join(dir, slotFile),
		logger: logger,
	}, nil
}

// Path returns the location of the session slot.
func (s *Store) Path() string {
	return s.path
}

// Save overwrites the slot with the full session. A Load in the same
// process immediately after Save observes the saved value.
func (s *Store) Save(sess *Session) error {
	if !sess.Valid() {
		return errors.New(errors.ErrCodeSessionCorrupt, "refusing to persist a partial session")
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, "failed to encode session", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeStateWriteFailed, "failed to write session slot", err)
	}
	return nil
}

// Load reads the slot. It returns nil when the slot is absent, unparsable,
// missing required identity fields, or holds an expired token. In the
// corrupt and expired cases the slot is cleared as a side effect, so the
// bad state is never observed twice.
func (s *Store) Load() *Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Debug("session slot unreadable, treating as no session")
		}
		return nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.WithError(err).Debug("session slot corrupt, clearing")
		s.Clear()
		return nil
	}

	if !sess.Valid() {
		s.logger.Debug("session slot missing required fields, clearing")
		s.Clear()
		return nil
	}

	if token.IsExpired(sess.Token) {
		s.logger.Debug("stored token expired, clearing session")
		s.Clear()
		return nil
	}

	return &sess
}

// Clear removes the slot unconditionally. Clearing an absent slot is not an
// error.
func (s *Store) Clear() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		s.logger.WithError(err).Warn("failed to clear session slot")
	}
}

// Subscribe returns a channel that receives a signal whenever the slot file
// changes on disk, including mutations made by other processes. The channel
// is buffered; slow consumers coalesce signals rather than block the
// watcher.
func (s *Store) Subscribe() (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStateDirFailed, "failed to watch session slot", err)
		}
		// Watch the directory, not the file: editors and other processes
		// replace the file, which would drop a file-level watch.
		if err := watcher.Add(s.dir); err != nil {
			watcher.Close()
			return nil, errors.NewStateDirError(s.dir, err)
		}
		s.watcher = watcher
		s.done = make(chan struct{})
		go s.dispatch(watcher, s.done)
	}

	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch, nil
}

// dispatch forwards slot-file events to subscribers until the store closes.
func (s *Store) dispatch(watcher *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != slotFile {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.notify()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.WithError(err).Debug("session slot watcher error")
		case <-done:
			return
		}
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close stops the change watcher. The store itself remains usable for
// Save/Load/Clear.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher == nil {
		return nil
	}
	close(s.done)
	err := s.watcher.Close()
	s.watcher = nil
	s.subs = nil
	return err
}
