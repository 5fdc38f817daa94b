package storage

import (
	"github.com/google/uuid"
)

// Namespaced prefixes every key with an owner id before handing it to the
// wrapped cache, so several owners can share one device cache.
type Namespaced struct {
	inner  Cache
	prefix string
}

// ForOwner returns a view of c scoped to ownerID.
func ForOwner(c Cache, ownerID string) *Namespaced {
	return &Namespaced{
		inner:  c,
		prefix: ownerID + "_",
	}
}

func (n *Namespaced) Get(key string, dst any) bool {
	return n.inner.Get(n.prefix+key, dst)
}

func (n *Namespaced) Set(key string, value any) error {
	return n.inner.Set(n.prefix+key, value)
}

func (n *Namespaced) Remove(key string) {
	n.inner.Remove(n.prefix + key)
}

// DeviceID returns the stable identifier of this device, generating and
// persisting one on first use. It is the owner id when nobody is signed in.
func DeviceID(c Cache) (string, error) {
	var id string
	if c.Get(KeyDeviceID, &id) && id != "" {
		return id, nil
	}

	id = "local_" + uuid.NewString()
	if err := c.Set(KeyDeviceID, id); err != nil {
		return "", err
	}

	return id, nil
}
