package ws

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryMultiConnection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Two tabs for the same user.
	tab1 := newClient(nil, nil, 1, "alice")
	tab2 := newClient(nil, nil, 1, "alice")
	registry.Add(tab1)
	registry.Add(tab2)

	online := registry.Snapshot()
	req.Len(online, 1)
	req.Equal(1, online[0].UserID)
	req.Equal("alice", online[0].Username)
	req.Len(registry.ConnectionsFor(1), 2)

	// Closing one tab keeps the user online.
	req.True(registry.Remove(tab1))
	req.Len(registry.Snapshot(), 1)
	req.Len(registry.ConnectionsFor(1), 1)

	// Closing the last tab takes the user offline.
	req.True(registry.Remove(tab2))
	req.Empty(registry.Snapshot())
	req.Empty(registry.ConnectionsFor(1))
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	c := newClient(nil, nil, 1, "alice")
	registry.Add(c)
	req.True(registry.Remove(c))
	req.False(registry.Remove(c))
	req.False(registry.Remove(newClient(nil, nil, 2, "bob")))
}

func TestRegistrySnapshotOrdered(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Add(newClient(nil, nil, 3, "carol"))
	registry.Add(newClient(nil, nil, 1, "alice"))
	registry.Add(newClient(nil, nil, 2, "bob"))

	online := registry.Snapshot()
	req.Len(online, 3)
	req.Equal([]int{1, 2, 3}, []int{online[0].UserID, online[1].UserID, online[2].UserID})
}
