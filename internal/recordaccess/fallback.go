package recordaccess

import (
	"fmt"

	"greensprint/internal/config"
	"greensprint/internal/ipc"
	"greensprint/internal/store"
)

// Session represents a record access handle and its cleanup function.
type Session struct {
	Access Access
	close  func() error
}

// Close releases resources associated with the session.
func (s Session) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenWithFallback tries IPC-backed access first, then falls back to direct
// store access.
func OpenWithFallback(
	cfg *config.Config,
	dial func() (*ipc.Client, error),
	openStore func() (*store.Store, error),
) (Session, error) {
	if dial != nil {
		if client, err := dial(); err == nil {
			return Session{
				Access: NewIPCAccess(client),
				close:  client.Close,
			}, nil
		}
	}

	if openStore == nil {
		return Session{}, fmt.Errorf("open record store: no store opener configured")
	}
	st, err := openStore()
	if err != nil {
		return Session{}, fmt.Errorf("open record store: %w", err)
	}
	return Session{
		Access: NewStoreAccess(cfg, st),
		close:  st.Close,
	}, nil
}
