// Package peers stores the paired-peer set, the one piece of shared mutable
// state the crypto core depends on. Readers get a deep-copied snapshot so a
// wrap fan-out never blocks on, or observes, a concurrent pairing.
package peers

import (
	"errors"
	"os"
	"sync"

	"clipsync/go-backend/internal/securestore"
	"clipsync/go-backend/pkg/models"
)

var ErrNotFound = errors.New("peer not found")

type Store interface {
	Upsert(models.Peer) error
	Remove(id string) error
	Get(id string) (models.Peer, bool, error)
	// Snapshot returns a consistent copy of the current peer set. A peer
	// paired mid-flight simply misses that in-flight message.
	Snapshot() ([]models.Peer, error)
}

type InMemoryStore struct {
	mu    sync.RWMutex
	peers map[string]models.Peer
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{peers: make(map[string]models.Peer)}
}

func (s *InMemoryStore) Upsert(peer models.Peer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.peers[peer.ID] = clonePeer(peer)
	return nil
}

func (s *InMemoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.peers[id]; !ok {
		return ErrNotFound
	}
	delete(s.peers, id)
	return nil
}

func (s *InMemoryStore) Get(id string) (models.Peer, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	peer, ok := s.peers[id]
	if !ok {
		return models.Peer{}, false, nil
	}
	return clonePeer(peer), true, nil
}

func (s *InMemoryStore) Snapshot() ([]models.Peer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Peer, 0, len(s.peers))
	for _, peer := range s.peers {
		out = append(out, clonePeer(peer))
	}
	return out, nil
}

// FileStore keeps the peer set in a securestore-encrypted JSON file. The file
// is re-read on every access; the peer set is small and pairing is rare.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase string
}

func NewFileStore(path, passphrase string) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

func (s *FileStore) Upsert(peer models.Peer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadLocked()
	if err != nil {
		return err
	}
	all[peer.ID] = clonePeer(peer)
	return s.writeLocked(all)
}

func (s *FileStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadLocked()
	if err != nil {
		return err
	}
	if _, ok := all[id]; !ok {
		return ErrNotFound
	}
	delete(all, id)
	return s.writeLocked(all)
}

func (s *FileStore) Get(id string) (models.Peer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadLocked()
	if err != nil {
		return models.Peer{}, false, err
	}
	peer, ok := all[id]
	return peer, ok, nil
}

func (s *FileStore) Snapshot() ([]models.Peer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	out := make([]models.Peer, 0, len(all))
	for _, peer := range all {
		out = append(out, peer)
	}
	return out, nil
}

func (s *FileStore) loadLocked() (map[string]models.Peer, error) {
	result := make(map[string]models.Peer)
	err := securestore.ReadDecryptedJSON(s.path, s.passphrase, &result)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, err
	}
	return result, nil
}

func (s *FileStore) writeLocked(all map[string]models.Peer) error {
	return securestore.WriteEncryptedJSON(s.path, s.passphrase, all)
}

func clonePeer(peer models.Peer) models.Peer {
	peer.PublicKey = append([]byte(nil), peer.PublicKey...)
	return peer
}
