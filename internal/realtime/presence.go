package realtime

import "sync"

// Directory tracks which live connections belong to which user for the
// lifetime of the process. It is rebuilt from scratch on restart and holds
// non-owning references only; the transport layer owns the connections.
//
// Invariant: a user id has an entry if and only if its connection set is
// non-empty. Entries are removed synchronously when the last connection
// drops.
type Directory struct {
	mu     sync.RWMutex
	conns  map[string]map[*Client]struct{}
	owners map[*Client]string
}

func NewDirectory() *Directory {
	return &Directory{
		conns:  make(map[string]map[*Client]struct{}),
		owners: make(map[*Client]string),
	}
}

// Register adds the connection to the user's set. Registering the same
// connection twice has no additional effect. Re-registering a connection
// under a different user moves it.
func (d *Directory) Register(userID string, c *Client) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.owners[c]; ok {
		if prev == userID {
			return
		}
		d.removeLocked(prev, c)
	}

	set := d.conns[userID]
	if set == nil {
		set = make(map[*Client]struct{})
		d.conns[userID] = set
	}
	set[c] = struct{}{}
	d.owners[c] = userID
}

// Unregister removes the connection from whichever user owns it. Unknown
// connections are a no-op. It returns the owning user id and how many of
// that user's connections remain.
func (d *Directory) Unregister(c *Client) (userID string, remaining int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, ok := d.owners[c]
	if !ok {
		return "", 0
	}
	d.removeLocked(userID, c)
	return userID, len(d.conns[userID])
}

func (d *Directory) removeLocked(userID string, c *Client) {
	delete(d.owners, c)
	if set, ok := d.conns[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(d.conns, userID)
		}
	}
}

// ConnectionsFor returns a snapshot of the user's live connections. An
// empty result means the user is not currently reachable, which is a
// normal condition, not a failure.
func (d *Directory) ConnectionsFor(userID string) []*Client {
	d.mu.RLock()
	defer d.mu.RUnlock()

	set := d.conns[userID]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// OnlineUsers returns the ids of all users with at least one connection.
func (d *Directory) OnlineUsers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]string, 0, len(d.conns))
	for id := range d.conns {
		out = append(out, id)
	}
	return out
}
